// Package sasldigest implements the DIGEST-MD5 mechanism (RFC 2831).
// HiveServer2 accepts it for delegation-token authentication, where the
// username is the encoded token identifier and the password the token
// secret.
package sasldigest

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/sasl"
)

const maxChallengeLength = 2048

// Client runs the two-step DIGEST-MD5 exchange and, when the server offers
// auth-int or auth-conf, installs the matching security layer.
type Client struct {
	authzid    string
	username   string
	password   string
	protocol   string
	serverName string

	Token *sasl.Challenge

	completed bool
	cnonce    string
	cipher    string
	secCtx    securityLayer
}

// NewClient returns a DIGEST-MD5 client for protocol/serverName, e.g.
// "hive" and the HiveServer2 host.
func NewClient(authzid, username, password, protocol, serverName string) *Client {
	return &Client{
		authzid:    authzid,
		username:   username,
		password:   password,
		protocol:   protocol,
		serverName: serverName,
	}
}

func (m *Client) GetMechanismName() string {
	return "DIGEST-MD5"
}

func (m *Client) HasInitialResponse() bool {
	return false
}

func (m *Client) EvaluateChallenge(challenge []byte) ([]byte, error) {
	if len(challenge) > maxChallengeLength {
		return nil, errors.Errorf("DIGEST-MD5: invalid digest-challenge length %d, expected < %d",
			len(challenge), maxChallengeLength)
	}
	if strings.HasPrefix(string(challenge), "rspauth") {
		err := m.verifyResponseAuth(challenge)
		m.completed = true
		return nil, err
	}
	return m.respond(challenge)
}

func (m *Client) IsComplete() bool {
	return m.completed
}

func (m *Client) Unwrap(incoming []byte) ([]byte, error) {
	if err := m.checkLayer(); err != nil {
		return nil, err
	}
	return m.secCtx.Unwrap(incoming)
}

func (m *Client) Wrap(outgoing []byte) ([]byte, error) {
	if err := m.checkLayer(); err != nil {
		return nil, err
	}
	return m.secCtx.Wrap(outgoing)
}

func (m *Client) checkLayer() error {
	if !m.completed {
		return errors.New("DIGEST-MD5 authentication not completed")
	}
	if m.secCtx == nil {
		return errors.New("neither integrity nor privacy was negotiated")
	}
	return nil
}

func (m *Client) GetNegotiatedProperty(propName string) (string, error) {
	if !m.completed {
		return "", errors.New("DIGEST-MD5 authentication not completed")
	}
	switch propName {
	case "sasl.bound.server.name":
		return m.serverName, nil
	case sasl.PropQop:
		return m.qop(), nil
	case "sasl.maxbuffer":
		return "65536", nil
	case "sasl.sendmaxbuffer":
		return "0", nil
	}
	return "", nil
}

func (m *Client) Dispose() {
	m.secCtx = nil
	m.password = ""
}

func (m *Client) qop() string {
	if m.Token == nil || len(m.Token.Qop) == 0 {
		return sasl.QopAuthentication
	}
	return m.Token.Qop[0]
}

// respond answers the initial digest-challenge (RFC 2831 step two).
func (m *Client) respond(challenge []byte) ([]byte, error) {
	token, err := sasl.ParseChallenge(challenge)
	if err != nil {
		return nil, err
	}
	m.Token = token

	m.cnonce, err = newNonce()
	if err != nil {
		return nil, err
	}
	m.cipher = chooseCipher(token.Cipher)

	resp := fmt.Sprintf(`username="%s", realm="%s", nonce="%s", cnonce="%s", nc=%08x, qop=%s, digest-uri="%s/%s", response=%s, charset=utf-8`,
		m.username, token.Realm, token.Nonce, m.cnonce, 1, m.qop(), m.protocol, m.serverName, m.compute(true))
	if m.cipher != "" {
		resp += ", cipher=" + m.cipher
	}
	return []byte(resp), nil
}

// verifyResponseAuth checks the server's rspauth (RFC 2831 step three) and
// sets up the security layer.
func (m *Client) verifyResponseAuth(challenge []byte) error {
	if m.Token == nil {
		return errors.New("rspauth received before digest-challenge")
	}
	parts := strings.SplitN(string(challenge), "=", 2)
	if len(parts) != 2 || parts[0] != "rspauth" {
		return errors.Errorf("rspauth not in %q", string(challenge))
	}
	if parts[1] != m.compute(false) {
		return errors.New("rspauth did not match digest")
	}

	switch m.qop() {
	case sasl.QopIntegrity:
		kic, kis := integrityKeys(m.a1())
		m.secCtx = newIntegrityLayer(kic, kis)
	case sasl.QopPrivacy:
		kic, kis := integrityKeys(m.a1())
		kcc, kcs := privacyKeys(m.a1(), m.cipher)
		layer, err := newPrivacyLayer(kic, kis, kcc, kcs)
		if err != nil {
			return err
		}
		m.secCtx = layer
	}
	return nil
}

func (m *Client) a1() string {
	x := h(strings.Join([]string{m.username, m.Token.Realm, m.password}, ":"))
	parts := []string{string(x), m.Token.Nonce, m.cnonce}
	if m.authzid != "" {
		parts = append(parts, m.authzid)
	}
	return strings.Join(parts, ":")
}

func (m *Client) a2(initial bool) string {
	method := ""
	if initial {
		method = "AUTHENTICATE"
	}
	a2 := method + ":" + m.protocol + "/" + m.serverName
	if qop := m.qop(); qop == sasl.QopIntegrity || qop == sasl.QopPrivacy {
		a2 += ":00000000000000000000000000000000"
	}
	return a2
}

func (m *Client) compute(initial bool) string {
	x := hex.EncodeToString(h(m.a1()))
	y := strings.Join([]string{
		m.Token.Nonce,
		fmt.Sprintf("%08x", 1),
		m.cnonce,
		m.qop(),
		hex.EncodeToString(h(m.a2(initial))),
	}, ":")
	return hex.EncodeToString(h(x + ":" + y))
}

func chooseCipher(options []string) string {
	offered := make(map[string]bool, len(options))
	for _, c := range options {
		offered[c] = true
	}
	for _, c := range []string{"rc4", "rc4-56", "rc4-40"} {
		if offered[c] {
			return c
		}
	}
	return ""
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate cnonce")
	}
	return hex.EncodeToString(b), nil
}

func h(s string) []byte {
	sum := md5.Sum([]byte(s))
	return sum[:]
}

var _ sasl.Client = (*Client)(nil)
