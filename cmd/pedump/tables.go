package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pekit/metadata"
	"github.com/joshuapare/pekit/metadata/schema"
)

var (
	tablesType  string
	tablesLimit int
	tablesHeap  int64
)

func init() {
	cmd := newTablesCmd()
	cmd.Flags().StringVar(&tablesType, "type", "", "Print only the table of this type")
	cmd.Flags().IntVar(&tablesLimit, "limit", 0, "Maximum rows per table (0 = unlimited)")
	cmd.Flags().Int64Var(&tablesHeap, "string-heap", 0, "Override the schema string heap offset")
	rootCmd.AddCommand(cmd)
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <file> <schema.yaml>",
		Short: "Decode metadata tables described by a schema",
		Long: `The tables command decodes every table described by a YAML schema and
prints the rows. Reference cells are printed as Type[index].

Example:
  pedump tables module.bin tables.yaml
  pedump tables module.bin tables.yaml --type Method --limit 10
  pedump tables module.bin tables.yaml --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd.Context(), args)
		},
	}
	return cmd
}

type tableOut struct {
	Type    string              `json:"type"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Total   int                 `json:"total"`
}

func runTables(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := schema.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	ts, err := schema.Decode(ctx, img, s, schema.Options{StringHeap: tablesHeap})
	if err != nil {
		return fmt.Errorf("failed to decode tables: %w", err)
	}
	printVerbose("Decoded %d tables, %d rows\n", ts.Len(), ts.TotalRows())

	var out []tableOut
	for _, t := range ts.All() {
		if tablesType != "" && string(t.Type()) != tablesType {
			continue
		}
		out = append(out, renderTable(t))
	}
	if tablesType != "" && len(out) == 0 {
		return fmt.Errorf("no table of type %q", tablesType)
	}

	if jsonOut {
		return printJSON(out)
	}
	for _, t := range out {
		printInfo("\n%s (%d rows)\n", t.Type, t.Total)
		for i, row := range t.Rows {
			printInfo("  [%d]", i)
			for _, c := range t.Columns {
				printInfo(" %s=%s", c, row[c])
			}
			printInfo("\n")
		}
		if len(t.Rows) < t.Total {
			printInfo("  ... %d more\n", t.Total-len(t.Rows))
		}
	}
	return nil
}

func renderTable(t *metadata.Table) tableOut {
	cols := t.Columns()
	out := tableOut{
		Type:    string(t.Type()),
		Columns: make([]string, len(cols)),
		Total:   t.RowsCount(),
	}
	for i, c := range cols {
		out.Columns[i] = c.Name()
	}
	for _, r := range t.Rows() {
		if tablesLimit > 0 && len(out.Rows) >= tablesLimit {
			break
		}
		row := make(map[string]string, len(cols))
		for _, c := range r.Cells() {
			row[c.Column().Name()] = c.Value().String()
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
