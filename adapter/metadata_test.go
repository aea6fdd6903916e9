package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestMetadataRoundTrip(t *testing.T) {
	def := ColumnDefinition{
		Name:    "name",
		Type:    String,
		Limit:   255,
		Default: strPtr("x"),
		Null:    boolPtr(true),
	}
	packed, err := metadataFor(def).Pack()
	require.NoError(t, err)
	assert.Equal(t, `{"v":1,"default":"x","null":true,"requested_type":"string"}`, packed)

	meta, ok := UnpackMetadata(packed)
	require.True(t, ok)
	assert.Equal(t, "x", *meta.Default)
	assert.True(t, *meta.Null)
	assert.Equal(t, "string", meta.RequestedType)
	assert.False(t, meta.Partition)
}

func TestUnpackMetadataWithoutVersion(t *testing.T) {
	meta, ok := UnpackMetadata(`{"default":"0","null":false,"limit":11}`)
	require.True(t, ok)
	assert.Equal(t, 1, meta.Version)
	assert.Equal(t, "0", *meta.Default)
	assert.False(t, *meta.Null)
}

func TestUnpackMetadataSoftFailure(t *testing.T) {
	for _, comment := range []string{
		"",
		"customer name",
		"{not json",
		`{"v":2,"default":"x"}`,
	} {
		meta, ok := UnpackMetadata(comment)
		assert.False(t, ok, comment)
		assert.Nil(t, meta.Default, comment)
	}
}
