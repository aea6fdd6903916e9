package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/mumuhhh/hiveadapter/adapter"
)

var (
	version string

	app = kingpin.New("hivectl", "CLI for inspecting and querying a Hive warehouse")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	cfgFiles = app.Flag(
		"config",
		"YAML config files (can be provided multiple times to merge configs)").
		Short('c').
		ExistingFiles()

	host     = app.Flag("host", "HiveServer2 host, overrides config").String()
	port     = app.Flag("port", "HiveServer2 port, overrides config").Int()
	database = app.Flag("database", "database to use, overrides config").Short('D').String()
	password = app.Flag("password", "password, overrides config").Envar("HIVE_PASSWORD").String()
	timeout  = app.Flag("timeout", "timeout for the whole command").Default("5m").Duration()
	format   = app.Flag("format", "output format: table, json or yaml").Short('o').Default("table").Enum("table", "json", "yaml")

	tables = app.Command("tables", "list tables of the database")

	describe      = app.Command("describe", "describe the columns of a table")
	describeTable = describe.Arg("table", "table name").Required().String()

	exists      = app.Command("exists", "check whether a table exists")
	existsTable = exists.Arg("table", "table name").Required().String()

	primaryKey      = app.Command("primary-key", "print the column used as primary key")
	primaryKeyTable = primaryKey.Arg("table", "table name").Required().String()

	query    = app.Command("query", "run a query and print its rows")
	querySQL = query.Arg("sql", "HiveQL query").Required().String()

	exec    = app.Command("exec", "run a statement that returns no rows")
	execSQL = exec.Arg("sql", "HiveQL statement").Required().String()

	typeCmd     = app.Command("type", "print the Hive storage type of a logical type")
	typeLogical = typeCmd.Arg("logical", "logical type, e.g. integer or string").Required().String()
	typeWidth   = typeCmd.Flag("width", "integer byte width").Default("0").Int()
)

func loadConfig() (adapter.Config, error) {
	var cfg adapter.Config
	if len(*cfgFiles) > 0 {
		parsed, err := adapter.ParseConfigFiles(*cfgFiles...)
		if err != nil {
			return cfg, err
		}
		cfg = *parsed
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *password != "" {
		cfg.Password = *password
	}
	return cfg, cfg.Validate()
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.JSONFormatter{})
	initialLevel := log.WarnLevel
	if *debug {
		initialLevel = log.DebugLevel
	}
	log.SetLevel(initialLevel)

	if cmd == typeCmd.FullCommand() {
		t, err := adapter.PhysicalType(adapter.LogicalType(*typeLogical), *typeWidth)
		app.FatalIfError(err, "")
		fmt.Println(t)
		return
	}

	cfg, err := loadConfig()
	app.FatalIfError(err, "invalid configuration")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	start := time.Now()
	session, err := adapter.Open(ctx, cfg)
	if err != nil {
		cancel()
		app.FatalIfError(err, "cannot open session to %s", cfg.Host)
	}
	log.WithField("elapsed", time.Since(start)).Debug("session opened")

	code, err := run(ctx, session, cmd)
	if cerr := session.Close(); cerr != nil {
		log.WithError(cerr).Warn("close session")
	}
	cancel()
	app.FatalIfError(err, "%s", cmd)
	os.Exit(code)
}

// run executes cmd and returns the process exit code. It never exits
// itself, so the caller can close the session first.
func run(ctx context.Context, session *adapter.Session, cmd string) (int, error) {
	switch cmd {
	case tables.FullCommand():
		names, err := session.ListTables(ctx)
		if err != nil {
			return 1, err
		}
		printTables(*format, names)
	case describe.FullCommand():
		cols, err := session.DescribeColumns(ctx, *describeTable)
		if err != nil {
			return 1, err
		}
		printColumns(*format, cols)
	case exists.FullCommand():
		ok, err := session.TableExists(ctx, *existsTable)
		if err != nil {
			return 1, err
		}
		fmt.Println(ok)
		if !ok {
			return 1, nil
		}
	case primaryKey.FullCommand():
		name, ok, err := session.PrimaryKey(ctx, *primaryKeyTable)
		if err != nil {
			return 1, err
		}
		if !ok {
			return 1, errors.Errorf("table %s has no columns", *primaryKeyTable)
		}
		fmt.Println(name)
	case query.FullCommand():
		res, err := session.Query(ctx, *querySQL)
		if err != nil {
			return 1, err
		}
		printResult(*format, res)
	case exec.FullCommand():
		if err := session.Exec(ctx, *execSQL); err != nil {
			return 1, err
		}
	default:
		return 1, errors.Errorf("unknown command %s", cmd)
	}
	return 0, nil
}
