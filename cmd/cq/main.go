// Command cq runs one SQL query against the CSV files named within it
// and prints or saves the result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	cq "github.com/cqsql/cq"
	"github.com/cqsql/cq/config"
	"github.com/cqsql/cq/csvio"
	"github.com/cqsql/cq/table"
)

type options struct {
	Help     bool   `short:"h" long:"help" description:"show this help"`
	Query    string `short:"q" long:"query" description:"inline query text; - reads from stdin"`
	File     string `short:"f" long:"file" description:"read query from file"`
	Output   string `short:"o" long:"output" description:"write result as CSV to file"`
	Counts   bool   `short:"c" long:"counts" description:"print row/column counts"`
	Pretty   bool   `short:"p" long:"pretty" description:"pretty-print the result table"`
	Vertical bool   `short:"v" long:"vertical" description:"one value per line"`
	InSep    string `short:"s" long:"in-delimiter" description:"input delimiter"`
	OutSep   string `short:"d" long:"out-delimiter" description:"output delimiter"`
	Force    bool   `long:"force" description:"allow DELETE without WHERE"`
	Config   string `long:"config" description:"TOML config file"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	if _, err := parser.ParseArgs(args); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.Help {
		parser.WriteHelp(stdout)
		return 0
	}

	query, err := readQuery(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg := config.Default()
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if opts.InSep != "" {
		cfg.Delimiter = opts.InSep
	}
	if opts.Force {
		cfg.ForceDelete = true
	}

	result, diags, err := cq.Execute(query, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, d := range diags {
		fmt.Fprintf(stderr, "diagnostic: %s\n", d.Message)
	}
	if result == nil {
		return 0
	}

	if opts.Output != "" {
		if opts.OutSep != "" {
			result.Delimiter = []rune(opts.OutSep)[0]
		}
		if err := csvio.Save(opts.Output, result); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	if opts.Counts {
		fmt.Fprintf(stdout, "%d rows, %d columns\n", len(result.Rows), len(result.Columns))
	}
	switch {
	case opts.Pretty:
		pp.Fprintln(stdout, result)
	case opts.Vertical:
		printVertical(stdout, result)
	case opts.Output == "":
		printTable(stdout, result)
	}
	return 0
}

func readQuery(opts options) (string, error) {
	switch {
	case opts.File != "":
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case opts.Query == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case opts.Query != "":
		return opts.Query, nil
	default:
		return "", fmt.Errorf("no query given: use -q, -f, or -q -")
	}
}

func printVertical(w io.Writer, t *table.Table) {
	for ri, row := range t.Rows {
		fmt.Fprintf(w, "--- row %d ---\n", ri+1)
		for ci, col := range t.Columns {
			fmt.Fprintf(w, "%s: %s\n", col.Name, row[ci].String())
		}
	}
}

func printTable(w io.Writer, t *table.Table) {
	names := t.ColumnNames()
	for i, n := range names {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, n)
	}
	fmt.Fprintln(w)
	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, v.String())
		}
		fmt.Fprintln(w)
	}
}
