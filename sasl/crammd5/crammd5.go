// Package saslcrammd5 implements the CRAM-MD5 mechanism (RFC 2195).
package saslcrammd5

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/sasl"
)

var (
	errNotCompleted = errors.New("CRAM-MD5 authentication not completed")
	errNoLayer      = errors.New("CRAM-MD5 supports neither integrity nor privacy")
)

// Client answers the server challenge with "<username> <hex hmac>".
type Client struct {
	completed bool
	username  string
	password  string
}

func NewClient(username, password string) *Client {
	return &Client{
		username: username,
		password: password,
	}
}

func (p *Client) GetMechanismName() string {
	return "CRAM-MD5"
}

func (p *Client) HasInitialResponse() bool {
	return false
}

func (p *Client) EvaluateChallenge(challenge []byte) ([]byte, error) {
	if p.completed {
		return nil, errors.New("CRAM-MD5 authentication already completed")
	}
	if len(challenge) == 0 {
		return nil, errors.New("CRAM-MD5 expects a non-empty challenge")
	}
	p.completed = true
	return []byte(p.username + " " + HmacMD5([]byte(p.password), challenge)), nil
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

func (p *Client) Dispose() {
	p.password = ""
}

var _ sasl.Client = (*Client)(nil)

// HmacMD5 returns the lower-case hex HMAC-MD5 of text keyed with key.
func HmacMD5(key, text []byte) string {
	mac := hmac.New(md5.New, key)
	mac.Write(text)
	return hex.EncodeToString(mac.Sum(nil))
}
