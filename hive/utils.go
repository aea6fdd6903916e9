package hive2

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
)

// Session variables understood by the driver.
const (
	VarAuth           = "auth"
	VarUsername       = "user"
	VarPassword       = "password"
	VarPrincipal      = "principal"
	VarUserPrincipal  = "user.principal"
	VarUserKeytab     = "user.keytab"
	VarUserKrb5Conf   = "user.krb5.conf"
	VarFetchSize      = "fetchSize"
	VarProxyUser      = "hive.server2.proxy.user"
	VarPollIntervalMS = "pollIntervalMs"
)

// Values of the auth session variable.
const (
	AuthNoSasl   = "noSasl"
	AuthPlain    = "PLAIN"
	AuthKerberos = "KERBEROS"
	AuthDigest   = "DIGEST-MD5"
	AuthCramMD5  = "CRAM-MD5"
)

const (
	defaultFetchSize      = 1000
	defaultPollIntervalMS = 100
)

func verifySuccess(p *cli_service.TStatus, withInfo bool) bool {
	status := p.GetStatusCode()
	return status == cli_service.TStatusCode_SUCCESS_STATUS ||
		(withInfo && status == cli_service.TStatusCode_SUCCESS_WITH_INFO_STATUS)
}

func verifySuccessWithInfo(p *cli_service.TStatus) bool {
	return verifySuccess(p, true)
}

// checkStatus turns a non-successful TStatus into a *ServerError.
func checkStatus(p *cli_service.TStatus) error {
	if verifySuccessWithInfo(p) {
		return nil
	}
	return &ServerError{
		Message:   p.GetErrorMessage(),
		SQLState:  p.GetSqlState(),
		ErrorCode: p.GetErrorCode(),
	}
}

func guid(b []byte) string {
	if len(b) != 16 {
		return ""
	}
	return uuid.UUID(b).String()
}

// ConnParams is the parsed form of a hive2:// connection URL.
type ConnParams struct {
	DBName        string
	JdbcUriString string
	Addresses     []string
	HiveConf      map[string]string
	HiveVar       map[string]string
	SessionVar    map[string]string
}

var keyValuePattern = regexp.MustCompile("([^;]*)=([^;]*)[;]?")

// ParseURL parses a JDBC style HiveServer2 URL:
//
//	hive2://host:port/db;sessionVar=value;...?hiveConf=value;...#hiveVar=value;...
func ParseURL(uri string) (*ConnParams, error) {
	p := &ConnParams{
		DBName:        "default",
		JdbcUriString: uri,
		SessionVar:    map[string]string{},
		HiveVar:       map[string]string{},
		HiveConf:      map[string]string{},
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse hive2 url")
	}
	if u.Scheme != "hive2" {
		return nil, errors.Errorf("unsupported scheme %q, want hive2", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("hive2 url has no host")
	}
	p.Addresses = strings.Split(u.Host, ",")

	if sessVars := strings.TrimPrefix(u.Path, "/"); sessVars != "" {
		db := sessVars
		if i := strings.Index(sessVars, ";"); i >= 0 {
			db = sessVars[:i]
			collect(sessVars[i+1:], p.SessionVar)
		}
		if db != "" {
			p.DBName = db
		}
	}
	collect(u.RawQuery, p.HiveConf)
	collect(u.Fragment, p.HiveVar)
	return p, nil
}

func collect(s string, into map[string]string) {
	if s == "" {
		return
	}
	for _, m := range keyValuePattern.FindAllStringSubmatch(s, -1) {
		into[m[1]] = m[2]
	}
}

func (p *ConnParams) intVar(name string, def int64) int64 {
	if s, ok := p.SessionVar[name]; ok {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// FetchSize is the number of rows requested per FetchResults call.
func (p *ConnParams) FetchSize() int64 {
	return p.intVar(VarFetchSize, defaultFetchSize)
}

// PollIntervalMS is the delay between GetOperationStatus calls.
func (p *ConnParams) PollIntervalMS() int64 {
	return p.intVar(VarPollIntervalMS, defaultPollIntervalMS)
}

// Auth reports the SASL mechanism to use. A principal implies Kerberos.
func (p *ConnParams) Auth() string {
	if auth, ok := p.SessionVar[VarAuth]; ok && auth != "" {
		if strings.EqualFold(auth, AuthNoSasl) {
			return AuthNoSasl
		}
		return strings.ToUpper(auth)
	}
	if _, ok := p.SessionVar[VarPrincipal]; ok {
		return AuthKerberos
	}
	return AuthPlain
}

// Credentials returns username and password, "anonymous" when unset.
func (p *ConnParams) Credentials() (string, string) {
	username, ok := p.SessionVar[VarUsername]
	if !ok {
		username, ok = p.SessionVar["username"]
	}
	if !ok {
		username = "anonymous"
	}
	password, ok := p.SessionVar[VarPassword]
	if !ok {
		password = "anonymous"
	}
	return username, password
}
