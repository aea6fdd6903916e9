// Package saslplain implements the PLAIN mechanism (RFC 4616) used by
// HiveServer2 for LDAP and custom password authentication.
package saslplain

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/sasl"
)

var (
	errCompleted    = errors.New("PLAIN authentication already completed")
	errNotCompleted = errors.New("PLAIN authentication not completed")
	errNoLayer      = errors.New("PLAIN supports neither integrity nor privacy")
)

// Client sends authzid, username and password in a single message.
type Client struct {
	completed       bool
	authorizationID string
	username        string
	password        string
}

// NewClient returns a PLAIN client. An empty authorizationID lets the server
// derive it from the username.
func NewClient(authorizationID, username, password string) *Client {
	return &Client{
		authorizationID: authorizationID,
		username:        username,
		password:        password,
	}
}

func (p *Client) GetMechanismName() string {
	return "PLAIN"
}

func (p *Client) HasInitialResponse() bool {
	return true
}

func (p *Client) EvaluateChallenge([]byte) ([]byte, error) {
	if p.completed {
		return nil, errCompleted
	}
	p.completed = true
	return bytes.Join([][]byte{
		[]byte(p.authorizationID),
		[]byte(p.username),
		[]byte(p.password),
	}, []byte{0}), nil
}

func (p *Client) IsComplete() bool {
	return p.completed
}

func (p *Client) Unwrap([]byte) ([]byte, error) {
	if p.completed {
		return nil, errNoLayer
	}
	return nil, errNotCompleted
}

func (p *Client) Wrap([]byte) ([]byte, error) {
	if p.completed {
		return nil, errNoLayer
	}
	return nil, errNotCompleted
}

func (p *Client) GetNegotiatedProperty(propName string) (string, error) {
	if !p.completed {
		return "", errNotCompleted
	}
	if propName == sasl.PropQop {
		return sasl.QopAuthentication, nil
	}
	return "", nil
}

// Dispose clears the password held in memory.
func (p *Client) Dispose() {
	p.password = ""
}

var _ sasl.Client = (*Client)(nil)
