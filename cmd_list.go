package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/render"
)

// moduleRow is one line of `pydoc-export list`.
type moduleRow struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Package   bool   `json:"package" yaml:"package"`
	Classes   int    `json:"classes" yaml:"classes"`
	Functions int    `json:"functions" yaml:"functions"`
	Summary   string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

var listFormats = []string{"table", "json", "yaml"}

func newListCmd(app *cliApp) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the Python modules found under the input directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVar(&format, "format", "table", "list format (table, json or yaml)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return listFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		project, err := app.newExporter(cfg).Load(commandContext(cmd))
		if err != nil {
			return err
		}
		var rows []moduleRow
		for _, m := range project.Context.Modules() {
			path, err := filepath.Rel(project.Root, m.Path)
			if err != nil {
				path = m.Path
			}
			rows = append(rows, moduleRow{
				Name:      m.Name,
				Path:      filepath.ToSlash(path),
				Package:   m.IsPackage,
				Classes:   len(m.Classes),
				Functions: len(m.Functions),
				Summary:   render.Summary(m.Doc),
			})
		}
		return writeRows(cmd.OutOrStdout(), format, rows)
	}
	return cmd
}

func writeRows(w io.Writer, format string, rows []moduleRow) error {
	switch format {
	case "table":
		tbl := table.NewWriter()
		tbl.AppendHeader(table.Row{"Module", "Path", "Classes", "Functions", "Summary"})
		for _, row := range rows {
			name := row.Name
			if row.Package {
				name += " (package)"
			}
			tbl.AppendRow(table.Row{name, row.Path, row.Classes, row.Functions, row.Summary})
		}
		tbl.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
			{Number: 5, WidthMax: summaryWidth()},
		})
		_, err := fmt.Fprintln(w, tbl.Render())
		return err
	case "json":
		if rows == nil {
			rows = []moduleRow{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown list format %q (choose from table, json, yaml)", format)
	}
}

// summaryWidth leaves the summary column whatever the terminal has left
// after the fixed columns.
func summaryWidth() int {
	return max(getTerminalWidth()-60, 30)
}
