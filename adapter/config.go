package adapter

import (
	"fmt"
	"io/ioutil"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"

	hive2 "github.com/mumuhhh/hiveadapter/hive"
)

// DefaultPort is the HiveServer2 Thrift port.
const DefaultPort = 10000

// KerberosConfig holds the settings for auth: KERBEROS.
type KerberosConfig struct {
	// Principal of the server, e.g. hive/_HOST@EXAMPLE.COM.
	Principal     string `yaml:"principal"`
	UserPrincipal string `yaml:"user_principal"`
	Keytab        string `yaml:"keytab"`
	Krb5Conf      string `yaml:"krb5_conf"`
}

// Config is the connection configuration of a Session.
type Config struct {
	Host     string `yaml:"host" validate:"nonzero"`
	Port     int    `yaml:"port" validate:"max=65535"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Auth is the SASL mechanism: PLAIN (default), KERBEROS, DIGEST-MD5,
	// CRAM-MD5 or noSasl.
	Auth     string         `yaml:"auth"`
	Kerberos KerberosConfig `yaml:"kerberos"`

	FetchSize      int `yaml:"fetch_size" validate:"min=0"`
	PollIntervalMS int `yaml:"poll_interval_ms" validate:"min=0"`

	HiveConf map[string]string `yaml:"hive_conf"`
	HiveVar  map[string]string `yaml:"hive_var"`

	// DualSeedPath is a file on the server loaded into dual when the
	// session creates it. Without it, or when the file holds no rows, dual
	// is filled with INSERT OVERWRITE ... SELECT 'X', which needs Hive 0.13
	// or later.
	DualSeedPath string `yaml:"dual_seed_path"`
}

var knownAuth = map[string]bool{
	"":                 true,
	hive2.AuthNoSasl:   true,
	hive2.AuthPlain:    true,
	hive2.AuthKerberos: true,
	hive2.AuthDigest:   true,
	hive2.AuthCramMD5:  true,
	"NONE":             true,
	"LDAP":             true,
	"CUSTOM":           true,
}

// Validate checks the configuration. Every failure is a
// *ConfigurationError.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return &ConfigurationError{Field: "database", Reason: "no database name given"}
	}
	if err := validator.Validate(c); err != nil {
		return validationError(err)
	}
	if !knownAuth[c.authName()] {
		return &ConfigurationError{Field: "auth", Reason: fmt.Sprintf("unknown mechanism %q", c.Auth)}
	}
	if c.authName() == hive2.AuthKerberos {
		switch {
		case c.Kerberos.Principal == "":
			return &ConfigurationError{Field: "kerberos.principal", Reason: "required for KERBEROS"}
		case c.Kerberos.UserPrincipal == "":
			return &ConfigurationError{Field: "kerberos.user_principal", Reason: "required for KERBEROS"}
		case c.Kerberos.Keytab == "":
			return &ConfigurationError{Field: "kerberos.keytab", Reason: "required for KERBEROS"}
		}
	}
	return nil
}

// validationError reports the first failing field, by name, so the message
// is stable.
func validationError(err error) error {
	errs, ok := err.(validator.ErrorMap)
	if !ok || len(errs) == 0 {
		return &ConfigurationError{Reason: err.Error()}
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return &ConfigurationError{Field: strings.ToLower(fields[0]), Reason: errs[fields[0]].Error()}
}

func (c *Config) authName() string {
	if strings.EqualFold(c.Auth, hive2.AuthNoSasl) {
		return hive2.AuthNoSasl
	}
	return strings.ToUpper(c.Auth)
}

func (c *Config) port() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

func (c *Config) sessionVars() map[string]string {
	vars := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			vars[k] = v
		}
	}
	set(hive2.VarAuth, c.authName())
	set(hive2.VarUsername, c.Username)
	set(hive2.VarPassword, c.Password)
	set(hive2.VarPrincipal, c.Kerberos.Principal)
	set(hive2.VarUserPrincipal, c.Kerberos.UserPrincipal)
	set(hive2.VarUserKeytab, c.Kerberos.Keytab)
	set(hive2.VarUserKrb5Conf, c.Kerberos.Krb5Conf)
	if c.FetchSize > 0 {
		vars[hive2.VarFetchSize] = strconv.Itoa(c.FetchSize)
	}
	if c.PollIntervalMS > 0 {
		vars[hive2.VarPollIntervalMS] = strconv.Itoa(c.PollIntervalMS)
	}
	return vars
}

// ConnParams returns the driver parameters for the configuration.
func (c *Config) ConnParams() *hive2.ConnParams {
	p := &hive2.ConnParams{
		DBName:     c.Database,
		Addresses:  []string{net.JoinHostPort(c.Host, strconv.Itoa(c.port()))},
		SessionVar: c.sessionVars(),
		HiveConf:   copyMap(c.HiveConf),
		HiveVar:    copyMap(c.HiveVar),
	}
	p.JdbcUriString = c.DSN()
	return p
}

// DSN renders the configuration as a hive2:// URL accepted by the hive2
// driver.
func (c *Config) DSN() string {
	var b strings.Builder
	b.WriteString("hive2://")
	b.WriteString(net.JoinHostPort(c.Host, strconv.Itoa(c.port())))
	b.WriteString("/")
	b.WriteString(c.Database)
	for _, kv := range sortedPairs(c.sessionVars()) {
		b.WriteString(";" + kv)
	}
	if len(c.HiveConf) > 0 {
		b.WriteString("?" + strings.Join(sortedPairs(c.HiveConf), ";"))
	}
	if len(c.HiveVar) > 0 {
		b.WriteString("#" + strings.Join(sortedPairs(c.HiveVar), ";"))
	}
	return b.String()
}

func sortedPairs(m map[string]string) []string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ParseConfigFiles loads the given YAML files in order, merging later files
// over earlier ones, and validates the result.
func ParseConfigFiles(files ...string) (*Config, error) {
	if len(files) == 0 {
		return nil, &ConfigurationError{Reason: "no config files to load"}
	}
	cfg := &Config{}
	for _, fname := range files {
		data, err := ioutil.ReadFile(fname)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", fname)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("%s: %v", fname, err)}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
