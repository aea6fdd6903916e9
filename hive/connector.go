package hive2

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"
	"time"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/apache/thrift/lib/go/thrift"
	krb "github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mumuhhh/hiveadapter/sasl"
	saslcrammd5 "github.com/mumuhhh/hiveadapter/sasl/crammd5"
	sasldigest "github.com/mumuhhh/hiveadapter/sasl/digest"
	saslgsskerb "github.com/mumuhhh/hiveadapter/sasl/gsskerb"
	saslplain "github.com/mumuhhh/hiveadapter/sasl/plain"
)

type connector struct {
	params *ConnParams
}

// NewConnector returns a driver.Connector for already parsed parameters,
// for callers that build ConnParams themselves instead of a URL.
func NewConnector(params *ConnParams) driver.Connector {
	return &connector{params: params}
}

func (c *connector) Driver() driver.Driver {
	return &HiveDriver{}
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	transport, err := c.openTransport()
	if err != nil {
		return nil, err
	}

	protocol := thrift.NewTBinaryProtocolFactoryConf(&thrift.TConfiguration{})
	client := cli_service.NewTCLIServiceClientFactory(transport, protocol)

	openResp, err := c.openSession(ctx, client)
	if err != nil {
		transport.Close()
		return nil, err
	}
	log.WithFields(log.Fields{
		"session":  guid(openResp.SessionHandle.GetSessionId().GetGUID()),
		"protocol": openResp.ServerProtocolVersion.String(),
		"database": c.params.DBName,
	}).Debug("hive2 session opened")

	return &hiveConn{
		transport:    transport,
		client:       client,
		sessHandle:   openResp.SessionHandle,
		protocol:     openResp.ServerProtocolVersion,
		fetchSize:    c.params.FetchSize(),
		pollInterval: time.Duration(c.params.PollIntervalMS()) * time.Millisecond,
		params:       c.params,
	}, nil
}

func (c *connector) openTransport() (thrift.TTransport, error) {
	if len(c.params.Addresses) == 0 {
		return nil, errors.New("hive2: no server address")
	}
	hostPort := c.params.Addresses[0]
	var transport thrift.TTransport
	transport, err := thrift.NewTSocketConf(hostPort, &thrift.TConfiguration{})
	if err != nil {
		return nil, errors.Wrapf(err, "create socket to %s", hostPort)
	}

	if auth := c.params.Auth(); auth != AuthNoSasl {
		saslClient, err := c.saslClient(auth, hostPort)
		if err != nil {
			return nil, err
		}
		transport = NewTSaslClientTransport(transport, saslClient)
	}

	if err := transport.Open(); err != nil {
		return nil, errors.Wrapf(err, "open transport to %s", hostPort)
	}
	return transport, nil
}

func (c *connector) saslClient(auth, hostPort string) (sasl.Client, error) {
	username, password := c.params.Credentials()
	switch auth {
	case AuthKerberos:
		return c.kerberosClient(hostPort)
	case AuthDigest:
		host, _, err := net.SplitHostPort(hostPort)
		if err != nil {
			return nil, errors.Wrapf(err, "split %s", hostPort)
		}
		return sasldigest.NewClient("", username, password, "hive", host), nil
	case AuthCramMD5:
		return saslcrammd5.NewClient(username, password), nil
	case AuthPlain, "NONE", "LDAP", "CUSTOM":
		return saslplain.NewClient("", username, password), nil
	}
	return nil, errors.Errorf("hive2: unsupported auth %q", auth)
}

func (c *connector) kerberosClient(hostPort string) (sasl.Client, error) {
	vars := c.params.SessionVar
	principal, ok := vars[VarPrincipal]
	if !ok {
		return nil, errors.New("hive2: kerberos auth requires principal")
	}
	userPrincipal, ok := vars[VarUserPrincipal]
	if !ok {
		return nil, errors.New("hive2: kerberos auth requires user.principal")
	}
	user := strings.SplitN(userPrincipal, "@", 2)
	if len(user) != 2 {
		return nil, errors.Errorf("hive2: user.principal %q has no realm", userPrincipal)
	}
	kt, err := keytab.Load(vars[VarUserKeytab])
	if err != nil {
		return nil, errors.Wrap(err, "load keytab")
	}
	krb5conf, err := config.Load(vars[VarUserKrb5Conf])
	if err != nil {
		return nil, errors.Wrap(err, "load krb5.conf")
	}
	krbClient := krb.NewWithKeytab(user[0], user[1], kt, krb5conf)

	// hive/_HOST@REALM -> service "hive", host resolved from the address.
	spn := strings.FieldsFunc(principal, func(r rune) bool {
		return r == '/' || r == '@'
	})
	host, _, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, errors.Wrapf(err, "split %s", hostPort)
	}
	if len(spn) > 1 && spn[1] != "_HOST" {
		host = spn[1]
	} else if addrs, err := net.LookupAddr(host); err == nil && len(addrs) > 0 {
		host = strings.TrimSuffix(addrs[0], ".")
	}
	return saslgsskerb.NewClient("", spn[0], host, krbClient), nil
}

func (c *connector) openSession(ctx context.Context, client *cli_service.TCLIServiceClient) (*cli_service.TOpenSessionResp, error) {
	req := cli_service.NewTOpenSessionReq()
	req.ClientProtocol = cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V8

	openConf := map[string]string{}
	for k, v := range c.params.HiveConf {
		openConf["set:hiveconf:"+k] = v
	}
	for k, v := range c.params.HiveVar {
		openConf["set:hivevar:"+k] = v
	}
	openConf["use:database"] = c.params.DBName
	if proxyUser, ok := c.params.SessionVar[VarProxyUser]; ok {
		openConf[VarProxyUser] = proxyUser
	}
	req.Configuration = openConf

	// Without SASL the server only learns the user from the request.
	if c.params.Auth() == AuthNoSasl {
		username, password := c.params.Credentials()
		req.Username = &username
		req.Password = &password
	}
	resp, err := client.OpenSession(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "open session")
	}
	if err := checkStatus(resp.Status); err != nil {
		return nil, err
	}
	return resp, nil
}
