package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"

	"github.com/mumuhhh/hiveadapter/adapter"
)

var tabWriter = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

func printStructured(format string, v interface{}) bool {
	var (
		out []byte
		err error
	)
	switch format {
	case "json":
		out, err = json.MarshalIndent(v, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(v)
	default:
		return false
	}
	if err != nil {
		fmt.Printf("marshal err=%v\n", err)
		return true
	}
	fmt.Println(strings.TrimRight(string(out), "\n"))
	return true
}

func printTables(format string, names []string) {
	if printStructured(format, names) {
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}

type columnView struct {
	Name      string  `json:"name" yaml:"name"`
	Type      string  `json:"type" yaml:"type"`
	Null      bool    `json:"null" yaml:"null"`
	Default   *string `json:"default,omitempty" yaml:"default,omitempty"`
	Requested string  `json:"requested_type,omitempty" yaml:"requested_type,omitempty"`
	Partition bool    `json:"partition,omitempty" yaml:"partition,omitempty"`
}

func printColumns(format string, cols []adapter.Column) {
	views := make([]columnView, len(cols))
	for i, c := range cols {
		views[i] = columnView{
			Name:      c.Name,
			Type:      c.SQLType,
			Null:      c.Null,
			Default:   c.Default,
			Requested: string(c.RequestedType),
			Partition: c.Partition,
		}
	}
	if printStructured(format, views) {
		return
	}
	fmt.Fprintln(tabWriter, "NAME\tTYPE\tNULL\tDEFAULT\tPARTITION\t")
	for _, v := range views {
		def := ""
		if v.Default != nil {
			def = *v.Default
		}
		fmt.Fprintf(tabWriter, "%s\t%s\t%t\t%s\t%t\t\n", v.Name, v.Type, v.Null, def, v.Partition)
	}
	tabWriter.Flush()
}

func printResult(format string, res *adapter.Result) {
	if format != "table" {
		rows := make([]map[string]interface{}, len(res.Rows))
		for i, row := range res.Rows {
			rows[i] = map[string]interface{}{}
			for j, v := range row {
				if b, ok := v.([]byte); ok {
					v = string(b)
				}
				rows[i][res.Columns[j]] = v
			}
		}
		printStructured(format, rows)
		return
	}
	fmt.Fprintln(tabWriter, strings.Join(res.Columns, "\t")+"\t")
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			switch x := v.(type) {
			case nil:
				cells[i] = "NULL"
			case []byte:
				cells[i] = string(x)
			default:
				cells[i] = fmt.Sprint(x)
			}
		}
		fmt.Fprintln(tabWriter, strings.Join(cells, "\t")+"\t")
	}
	tabWriter.Flush()
}
