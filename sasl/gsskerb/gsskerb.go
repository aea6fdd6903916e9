// Package saslgsskerb implements the GSSAPI mechanism (RFC 4752) on top of a
// gokrb5 Kerberos client.
package saslgsskerb

import (
	"encoding/binary"

	krb "github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/crypto"
	"github.com/jcmturner/gokrb5/v8/gssapi"
	"github.com/jcmturner/gokrb5/v8/iana/keyusage"
	"github.com/jcmturner/gokrb5/v8/spnego"
	"github.com/jcmturner/gokrb5/v8/types"
	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/sasl"
)

// Security layer bits of the final GSSAPI negotiation message.
const (
	layerNone      byte = 1
	layerIntegrity byte = 2
	layerPrivacy   byte = 4

	maxBufferSize = 65536
)

var errNotCompleted = errors.New("GSSAPI authentication not completed")

// Client authenticates as the principal held by a gokrb5 client against
// the service principal <protocol>/<serverName>.
type Client struct {
	authzID        string
	protocol       string
	serverName     string
	kerberosClient *krb.Client

	completed, finalHandshake, privacy, integrity bool
	sessionKey                                    types.EncryptionKey
}

func NewClient(authzID, protocol, serverName string, kerberosClient *krb.Client) *Client {
	return &Client{
		authzID:        authzID,
		protocol:       protocol,
		serverName:     serverName,
		kerberosClient: kerberosClient,
	}
}

func (p *Client) GetMechanismName() string {
	return "GSSAPI"
}

func (p *Client) HasInitialResponse() bool {
	return true
}

func (p *Client) EvaluateChallenge(challenge []byte) ([]byte, error) {
	if p.completed {
		return nil, errors.New("GSSAPI authentication already completed")
	}
	if !p.finalHandshake {
		return p.initSecContext()
	}
	if len(challenge) == 0 {
		return []byte{}, nil
	}
	return p.negotiateLayer(challenge)
}

func (p *Client) initSecContext() ([]byte, error) {
	spn := p.protocol + "/" + p.serverName
	ticket, key, err := p.kerberosClient.GetServiceTicket(spn)
	if err != nil {
		return nil, errors.Wrapf(err, "get service ticket for %s", spn)
	}
	p.sessionKey = key
	token, err := spnego.NewNegTokenInitKRB5(p.kerberosClient, ticket, key)
	if err != nil {
		return nil, errors.Wrap(err, "build GSSAPI init token")
	}
	p.finalHandshake = true
	return token.MechTokenBytes, nil
}

// negotiateLayer handles the server's 4-byte {layers, max buffer} offer and
// replies with the chosen layer.
func (p *Client) negotiateLayer(challenge []byte) ([]byte, error) {
	data, err := p.unwrap(challenge, false)
	if err != nil {
		return nil, err
	}
	if len(data) != 4 {
		return nil, errors.Errorf("GSSAPI security layer offer has length %d, want 4", len(data))
	}
	layers := data[0]
	data[0] = 0
	serverMax := binary.BigEndian.Uint32(data)

	chosen := layerNone
	switch {
	case layers&layerPrivacy != 0:
		chosen = layerPrivacy
		p.integrity, p.privacy = true, true
	case layers&layerIntegrity != 0:
		chosen = layerIntegrity
		p.integrity = true
	}

	maxLength := serverMax
	if maxLength > maxBufferSize {
		maxLength = maxBufferSize
	}
	out := make([]byte, 4, 4+len(p.authzID))
	binary.BigEndian.PutUint32(out, uint32(chosen)<<24|maxLength)
	out = append(out, p.authzID...)

	signed, err := p.wrap(out, false)
	if err != nil {
		return nil, err
	}
	p.completed = true
	return signed, nil
}

func (p *Client) IsComplete() bool {
	return p.completed
}

func (p *Client) unwrap(b []byte, sealed bool) ([]byte, error) {
	var token gssapi.WrapToken
	if err := token.Unmarshal(b, true); err != nil {
		return nil, errors.Wrap(err, "unmarshal wrap token")
	}
	if sealed {
		return crypto.DecryptMessage(token.Payload, p.sessionKey, keyusage.GSSAPI_ACCEPTOR_SEAL)
	}
	if _, err := token.Verify(p.sessionKey, keyusage.GSSAPI_ACCEPTOR_SEAL); err != nil {
		return nil, errors.Wrap(err, "unverifiable message from server")
	}
	return token.Payload, nil
}

func (p *Client) wrap(b []byte, seal bool) ([]byte, error) {
	payload := b
	if seal {
		et, err := crypto.GetEtype(p.sessionKey.KeyType)
		if err != nil {
			return nil, errors.Wrap(err, "get etype")
		}
		_, payload, err = et.EncryptMessage(p.sessionKey.KeyValue, b, keyusage.GSSAPI_INITIATOR_SEAL)
		if err != nil {
			return nil, errors.Wrap(err, "seal message")
		}
	}
	token, err := gssapi.NewInitiatorWrapToken(payload, p.sessionKey)
	if err != nil {
		return nil, errors.Wrap(err, "build wrap token")
	}
	return token.Marshal()
}

func (p *Client) Unwrap(incoming []byte) ([]byte, error) {
	if !p.completed {
		return nil, errNotCompleted
	}
	if !p.integrity {
		return nil, errors.New("no security layer negotiated")
	}
	return p.unwrap(incoming, p.privacy)
}

func (p *Client) Wrap(outgoing []byte) ([]byte, error) {
	if !p.completed {
		return nil, errNotCompleted
	}
	if !p.integrity {
		return nil, errors.New("no security layer negotiated")
	}
	return p.wrap(outgoing, p.privacy)
}

func (p *Client) GetNegotiatedProperty(propName string) (string, error) {
	if !p.completed {
		return "", errNotCompleted
	}
	if propName != sasl.PropQop {
		return "", nil
	}
	switch {
	case p.privacy:
		return sasl.QopPrivacy, nil
	case p.integrity:
		return sasl.QopIntegrity, nil
	}
	return sasl.QopAuthentication, nil
}

func (p *Client) Dispose() {
	if p.kerberosClient != nil {
		p.kerberosClient.Destroy()
	}
}

var _ sasl.Client = (*Client)(nil)
