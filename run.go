package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/export"
)

type cliApp struct {
	stdout io.Writer
	stderr io.Writer
}

func run(argv []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(argv)
	return cmd.Execute()
}

func (app *cliApp) newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(app.stderr, log.Options{
		Prefix: "pydoc-export",
		Level:  level,
	})
}

// newExporter builds an exporter for cfg. The running executable is passed
// as the self path so a binary kept inside the input tree is never
// documented.
func (app *cliApp) newExporter(cfg *config.Config) *export.Exporter {
	opts := []export.Option{export.WithLogger(app.newLogger(cfg.Verbose))}
	if self, err := os.Executable(); err == nil {
		opts = append(opts, export.WithSelf(self))
	}
	return export.New(*cfg, opts...)
}

func (app *cliApp) execute(ctx context.Context, flags *pflag.FlagSet) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	summary, err := app.newExporter(cfg).Run(ctx)
	if err != nil {
		return err
	}
	app.report(cfg, summary)
	return nil
}

func (app *cliApp) report(cfg *config.Config, s *export.Summary) {
	if s.Pages == 0 {
		color.New(color.FgYellow).Fprintf(app.stderr, "no Python modules found in %s\n", cfg.Input)
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(app.stderr, "wrote %d %s pages", s.Pages, cfg.Format)
	fmt.Fprintf(app.stderr, " for %d modules (%d files) to %s\n", s.Modules, s.Files, cfg.Output)
	if s.Index != "" {
		fmt.Fprintf(app.stderr, "index: %s\n", s.Index)
	}
}
