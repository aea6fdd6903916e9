package hive2

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type hiveStmt struct {
	hc         *hiveConn
	sql        string
	stmtHandle *cli_service.TOperationHandle

	isOperationComplete bool
}

func (hs *hiveStmt) closeClientOperation() error {
	if hs.stmtHandle != nil {
		closeReq := cli_service.NewTCloseOperationReq()
		closeReq.OperationHandle = hs.stmtHandle
		hs.stmtHandle = nil
		closeResp, err := hs.hc.client.CloseOperation(context.Background(), closeReq)
		if err != nil {
			return errors.Wrap(err, "close operation")
		}
		if err := checkStatus(closeResp.GetStatus()); err != nil {
			return err
		}
	}
	return nil
}

func (hs *hiveStmt) Close() error {
	return hs.closeClientOperation()
}

func (hs *hiveStmt) runAsyncOnServer(ctx context.Context) error {
	if err := hs.closeClientOperation(); err != nil {
		return err
	}
	hs.isOperationComplete = false

	execReq := cli_service.NewTExecuteStatementReq()
	execReq.SessionHandle = hs.hc.sessHandle
	execReq.Statement = hs.sql
	execReq.RunAsync = true
	execResp, err := hs.hc.client.ExecuteStatement(ctx, execReq)
	if err != nil {
		return errors.Wrap(err, "execute statement")
	}
	if err := checkStatus(execResp.GetStatus()); err != nil {
		return err
	}
	hs.stmtHandle = execResp.OperationHandle
	log.WithFields(log.Fields{
		"operation": guid(hs.stmtHandle.GetOperationId().GetGUID()),
		"query":     hs.sql,
	}).Debug("hive2 statement submitted")
	return nil
}

// waitForOperationToComplete polls the operation state until it reaches a
// terminal state or ctx is done.
func (hs *hiveStmt) waitForOperationToComplete(ctx context.Context) error {
	statusReq := cli_service.NewTGetOperationStatusReq()
	statusReq.OperationHandle = hs.stmtHandle

	for !hs.isOperationComplete {
		statusResp, err := hs.hc.client.GetOperationStatus(ctx, statusReq)
		if err != nil {
			return errors.Wrap(err, "get operation status")
		}
		if err := checkStatus(statusResp.GetStatus()); err != nil {
			return err
		}
		if statusResp.IsSetOperationState() {
			switch statusResp.GetOperationState() {
			case cli_service.TOperationState_CLOSED_STATE, cli_service.TOperationState_FINISHED_STATE:
				hs.isOperationComplete = true
				continue
			case cli_service.TOperationState_CANCELED_STATE:
				return &ServerError{Message: "query was cancelled"}
			case cli_service.TOperationState_TIMEDOUT_STATE:
				return &ServerError{Message: "query timed out"}
			case cli_service.TOperationState_ERROR_STATE:
				return &ServerError{
					Message:   statusResp.GetErrorMessage(),
					SQLState:  statusResp.GetSqlState(),
					ErrorCode: statusResp.GetErrorCode(),
				}
			case cli_service.TOperationState_UKNOWN_STATE:
				return &ServerError{Message: "unknown query state", SQLState: "HY000"}
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(hs.hc.pollInterval):
		}
	}
	return nil
}

func (hs *hiveStmt) query(ctx context.Context) (driver.Rows, error) {
	if err := hs.runAsyncOnServer(ctx); err != nil {
		return nil, err
	}
	if err := hs.waitForOperationToComplete(ctx); err != nil {
		hs.closeClientOperation()
		return nil, err
	}
	hr := &hiveRows{
		hiveStmt: hs,
		ctx:      ctx,
	}
	if !hs.stmtHandle.GetHasResultSet() {
		return hr, nil
	}
	if err := hr.retrieveSchema(); err != nil {
		hs.closeClientOperation()
		return nil, err
	}
	return hr, nil
}

func (hs *hiveStmt) NumInput() int {
	return 0
}

func (hs *hiveStmt) Exec(args []driver.Value) (driver.Result, error) {
	return hs.ExecContext(context.Background(), nil)
}

func (hs *hiveStmt) ExecContext(ctx context.Context, _ []driver.NamedValue) (driver.Result, error) {
	if err := hs.runAsyncOnServer(ctx); err != nil {
		return nil, err
	}
	if err := hs.waitForOperationToComplete(ctx); err != nil {
		return nil, err
	}
	return driver.ResultNoRows, hs.closeClientOperation()
}

func (hs *hiveStmt) Query(args []driver.Value) (driver.Rows, error) {
	return hs.QueryContext(context.Background(), nil)
}

func (hs *hiveStmt) QueryContext(ctx context.Context, _ []driver.NamedValue) (driver.Rows, error) {
	return hs.query(ctx)
}

var (
	_ driver.Stmt             = (*hiveStmt)(nil)
	_ driver.StmtExecContext  = (*hiveStmt)(nil)
	_ driver.StmtQueryContext = (*hiveStmt)(nil)
)
