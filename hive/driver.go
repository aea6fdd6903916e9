// Package hive2 is a database/sql driver for HiveServer2, registered under
// the name "hive2". It speaks TCLIService over a plain or SASL framed Thrift
// socket.
package hive2

import (
	"context"
	"database/sql"
	"database/sql/driver"
)

// DriverName is the name the driver is registered under.
const DriverName = "hive2"

func init() {
	sql.Register(DriverName, &HiveDriver{})
}

type HiveDriver struct{}

func (h HiveDriver) Open(uri string) (driver.Conn, error) {
	c, err := h.OpenConnector(uri)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

func (h HiveDriver) OpenConnector(uri string) (driver.Connector, error) {
	params, err := ParseURL(uri)
	if err != nil {
		return nil, err
	}
	return &connector{
		params: params,
	}, nil
}

var _ driver.DriverContext = HiveDriver{}
