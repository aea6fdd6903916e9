package adapter

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	hive2 "github.com/mumuhhh/hiveadapter/hive"
)

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/mumuhhh/hiveadapter/adapter Runner

// Runner sends statement text to Hive over one connection.
type Runner interface {
	Querier
	Exec(ctx context.Context, query string) error
	Close() error
}

// connRunner runs every statement on a single pinned hive2 connection.
type connRunner struct {
	db   *sqlx.DB
	conn *sqlx.Conn
}

// dial opens the one connection a Session uses.
func dial(ctx context.Context, params *hive2.ConnParams) (*connRunner, error) {
	db := sqlx.NewDb(sql.OpenDB(hive2.NewConnector(params)), hive2.DriverName)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &connRunner{db: db, conn: conn}, nil
}

func (r *connRunner) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := r.conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read columns")
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

func (r *connRunner) Exec(ctx context.Context, query string) error {
	_, err := r.conn.ExecContext(ctx, query)
	return err
}

func (r *connRunner) Close() error {
	err := r.conn.Close()
	if dbErr := r.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
