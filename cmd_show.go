package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/spf13/cobra"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
	"github.com/agentflare-ai/pydoc-export/internal/render"
)

func newShowCmd(app *cliApp) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <module>[.<symbol>[.<method>]]",
		Short: "Render the documentation of one module or symbol in the terminal",
		Long: `Render the documentation of one module, class, function or method as
Markdown. The argument is matched against the longest module name first, so
"pkg.mod.Class.method" shows one method of class Class in module pkg.mod.

On a terminal the Markdown is styled to match the terminal background;
otherwise a plain style is used. Pass --raw to print the Markdown as is.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal styling")
	cmd.ValidArgsFunction = app.completeModules

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		project, err := app.newExporter(cfg).Load(commandContext(cmd))
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if !writeTarget(&buf, project.Context, args[0], render.Options{ShowSource: cfg.ShowSource}) {
			return fmt.Errorf("no module or symbol %q under %s", args[0], project.Root)
		}
		out := cmd.OutOrStdout()
		if raw {
			_, err := out.Write(buf.Bytes())
			return err
		}
		return writeStyled(out, buf.String())
	}
	return cmd
}

// completeModules offers the module names found under the configured input
// directory.
func (app *cliApp) completeModules(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	project, err := app.newExporter(cfg).Load(commandContext(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, m := range project.Modules {
		if strings.HasPrefix(m.Name, toComplete) {
			names = append(names, m.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// writeTarget renders target as a module, or as a symbol of the module
// named by its longest dotted prefix.
func writeTarget(w io.Writer, ctx *pydoc.Context, target string, opts render.Options) bool {
	if m := ctx.Module(target); m != nil {
		render.Markdown(w, m, opts)
		return true
	}
	for i := len(target) - 1; i > 0; i-- {
		if target[i] != '.' {
			continue
		}
		m := ctx.Module(target[:i])
		if m == nil {
			continue
		}
		return render.MarkdownSymbol(w, m, target[i+1:], opts)
	}
	return false
}

func writeStyled(w io.Writer, markdown string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(getTerminalWidth())}
	if isTerminal(w) {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(styles.NoTTYStyle))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return err
	}
	styled, err := renderer.Render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, styled)
	return err
}
