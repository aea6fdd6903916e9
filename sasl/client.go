// Package sasl defines the client side of the SASL handshake spoken by
// HiveServer2 before any Thrift call is exchanged.
package sasl

// Quality of protection values negotiated through "sasl.qop".
const (
	QopAuthentication = "auth"
	QopIntegrity      = "auth-int"
	QopPrivacy        = "auth-conf"
)

// PropQop is the negotiated property naming the quality of protection.
const PropQop = "sasl.qop"

// Client is a single SASL mechanism. A client is used for exactly one
// handshake and then, if a security layer was negotiated, for wrapping and
// unwrapping every frame of the connection.
type Client interface {
	GetMechanismName() string
	HasInitialResponse() bool
	EvaluateChallenge(challenge []byte) ([]byte, error)
	IsComplete() bool
	Unwrap(incoming []byte) ([]byte, error)
	Wrap(outgoing []byte) ([]byte, error)
	GetNegotiatedProperty(propName string) (string, error)
	Dispose()
}
