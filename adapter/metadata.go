package adapter

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// metadataVersion is the version of the column comment envelope written by
// this package. Comments without a version are read as version 1.
const metadataVersion = 1

// ColumnMetadata is the column state Hive DDL cannot store natively. It is
// packed as JSON into the column COMMENT and recovered on DESCRIBE. Only
// these keys are ever written.
type ColumnMetadata struct {
	Version       int     `json:"v,omitempty"`
	Default       *string `json:"default,omitempty"`
	Null          *bool   `json:"null,omitempty"`
	RequestedType string  `json:"requested_type,omitempty"`
	Partition     bool    `json:"partition,omitempty"`
}

// metadataFor extracts the packable options of a column definition.
// Limit, precision and scale are dropped.
func metadataFor(def ColumnDefinition) ColumnMetadata {
	return ColumnMetadata{
		Version:       metadataVersion,
		Default:       def.Default,
		Null:          def.Null,
		RequestedType: string(def.Type),
		Partition:     def.Partition,
	}
}

// Pack encodes the envelope as a JSON object.
func (m ColumnMetadata) Pack() (string, error) {
	if m.Version == 0 {
		m.Version = metadataVersion
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "pack column metadata")
	}
	return string(b), nil
}

// UnpackMetadata decodes a column comment. ok is false when the comment is
// not an envelope this package can read, which callers treat as "no
// metadata".
func UnpackMetadata(comment string) (m ColumnMetadata, ok bool) {
	if comment == "" || comment[0] != '{' {
		return ColumnMetadata{}, false
	}
	if err := json.Unmarshal([]byte(comment), &m); err != nil {
		return ColumnMetadata{}, false
	}
	if m.Version == 0 {
		m.Version = 1
	}
	if m.Version > metadataVersion {
		return ColumnMetadata{}, false
	}
	return m, true
}
