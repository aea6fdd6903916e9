package hive2

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type hiveConn struct {
	transport    thrift.TTransport
	client       *cli_service.TCLIServiceClient
	sessHandle   *cli_service.TSessionHandle
	protocol     cli_service.TProtocolVersion
	fetchSize    int64
	pollInterval time.Duration
	params       *ConnParams
}

func (hc *hiveConn) Prepare(query string) (driver.Stmt, error) {
	return hc.PrepareContext(context.Background(), query)
}

func (hc *hiveConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	return &hiveStmt{
		hc:  hc,
		sql: query,
	}, nil
}

// ExecContext runs a statement without parameters and waits for it to
// finish on the server.
func (hc *hiveConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, driver.ErrSkip
	}
	stmt := &hiveStmt{hc: hc, sql: query}
	defer stmt.Close()
	if err := stmt.runAsyncOnServer(ctx); err != nil {
		return nil, err
	}
	if err := stmt.waitForOperationToComplete(ctx); err != nil {
		return nil, err
	}
	return driver.ResultNoRows, nil
}

func (hc *hiveConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, driver.ErrSkip
	}
	stmt := &hiveStmt{hc: hc, sql: query}
	return stmt.query(ctx)
}

func (hc *hiveConn) Close() error {
	closeReq := cli_service.NewTCloseSessionReq()
	closeReq.SessionHandle = hc.sessHandle
	_, err := hc.client.CloseSession(context.Background(), closeReq)
	if err != nil {
		err = errors.Wrap(err, "close session")
	}
	if hc.transport != nil {
		if terr := hc.transport.Close(); terr != nil && err == nil {
			err = errors.Wrap(terr, "close socket")
		}
	}
	log.WithField("session", guid(hc.sessHandle.GetSessionId().GetGUID())).Debug("hive2 session closed")
	return err
}

func (hc *hiveConn) Begin() (driver.Tx, error) {
	return nil, ErrNotSupported
}

var (
	_ driver.Conn               = (*hiveConn)(nil)
	_ driver.ConnPrepareContext = (*hiveConn)(nil)
	_ driver.ExecerContext      = (*hiveConn)(nil)
	_ driver.QueryerContext     = (*hiveConn)(nil)
)
