package sasl

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Challenge is a parsed RFC 2831 digest-challenge.
type Challenge struct {
	Realm     string
	Nonce     string
	Qop       []string
	Charset   string
	Cipher    []string
	Algorithm string
	MaxBuf    string
}

var challengeRegexp = regexp.MustCompile(`,?([a-zA-Z0-9-]+)=("([^"]*)"|([^,]+)),?`)

// ParseChallenge parses a digest-challenge sent by the server in the first
// step of a DIGEST-MD5 exchange.
func ParseChallenge(challenge []byte) (*Challenge, error) {
	c := &Challenge{}
	matches := challengeRegexp.FindAllSubmatch(challenge, -1)
	if len(matches) == 0 {
		return nil, errors.Errorf("invalid digest-challenge %q", string(challenge))
	}
	for _, m := range matches {
		key := string(m[1])
		value := string(m[3])
		if len(m[4]) > 0 {
			value = string(m[4])
		}
		switch key {
		case "realm":
			c.Realm = value
		case "nonce":
			c.Nonce = value
		case "qop":
			c.Qop = splitList(value)
		case "charset":
			c.Charset = value
		case "cipher":
			c.Cipher = splitList(value)
		case "algorithm":
			c.Algorithm = value
		case "maxbuf":
			c.MaxBuf = value
		}
	}
	if c.Nonce == "" {
		return nil, errors.New("digest-challenge is missing nonce")
	}
	if len(c.Qop) == 0 {
		c.Qop = []string{QopAuthentication}
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
