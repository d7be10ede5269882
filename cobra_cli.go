package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"

	"github.com/agentflare-ai/pydoc-export/internal/config"
)

const rootLongDesc = `
pydoc-export walks a directory of Python sources and writes one documentation
page per module, as HTML or reStructuredText. Sources are read statically;
nothing is imported or executed, so projects with missing dependencies or
side effects at import time document just as well.

Settings come from flags, PYDOCEXPORT_* environment variables and the
[tool.pydoc-export] table of the input directory's pyproject.toml, in that
order of precedence.

Besides the export itself the CLI ships:

  • list: print the discovered modules as a table, JSON or YAML
  • show: render one module as Markdown in the terminal
  • Shell completion generation for bash, zsh, fish, and PowerShell
  • A gen-docs helper that can emit Markdown reference docs for the CLI itself
`

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "pydoc-export [flags]",
		Short:         "Export Python API documentation as HTML or reStructuredText",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	config.RegisterFlags(cmd.PersistentFlags())
	_ = cmd.MarkPersistentFlagDirname(config.KeyInput)
	_ = cmd.MarkPersistentFlagDirname(config.KeyOutput)
	_ = cmd.RegisterFlagCompletionFunc(config.KeyType, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(config.Formats))
		for _, f := range config.Formats {
			formats = append(formats, string(f))
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.execute(cmd.Context(), cmd.Flags())
	}

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// completionGenerators maps each supported shell to the Cobra generator
// for it. Every script carries command and flag descriptions.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	shells := slices.Sorted(maps.Keys(completionGenerators))
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: strings.TrimSpace(`
Print a completion script for pydoc-export. Besides subcommands and flags the
script completes --type with html or rst, directories for --input and
--output, and the module names of the input project for "show".

Install it once per shell:

  pydoc-export completion bash > ~/.local/share/bash-completion/completions/pydoc-export
  pydoc-export completion zsh > "${fpath[1]}/_pydoc-export"
  pydoc-export completion fish > ~/.config/fish/completions/pydoc-export.fish
  pydoc-export completion powershell >> $PROFILE
`),
		ValidArgs:             shells,
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("completion needs one shell: %s", strings.Join(shells, ", "))
		}
		if _, ok := completionGenerators[args[0]]; !ok {
			return fmt.Errorf("no completion for shell %q (choose from %s)", args[0], strings.Join(shells, ", "))
		}
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](root, cmd.OutOrStdout())
	}
	return cmd
}

// newDocsCmd writes the reference of every command, either as Markdown or
// as reStructuredText pages that sit next to an rst export.
func newDocsCmd(root *cobra.Command) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "gen-docs <directory>",
		Short: "Generate reference docs for the pydoc-export CLI",
		Long: strings.TrimSpace(`
Write one page per command of pydoc-export (the export itself, list, show,
completion and gen-docs) into the given directory, which is created when
missing. Pages are Markdown by default; --format rst writes
reStructuredText so the CLI reference can join the API pages in a Sphinx
tree.

  pydoc-export gen-docs ./docs/cli
  pydoc-export gen-docs --format rst ./docs/api/cli
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVar(&format, "format", "md", "page format: md or rst")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"md", "rst"}, cobra.ShellCompDirectiveNoFileComp))

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if strings.TrimSpace(target) == "" {
			return errors.New("gen-docs needs a target directory")
		}
		var gen func(*cobra.Command, string) error
		switch format {
		case "md":
			gen = cobradoc.GenMarkdownTree
		case "rst":
			gen = cobradoc.GenReSTTree
		default:
			return errors.Errorf("unknown docs format %q (choose from md, rst)", format)
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return errors.Wrap(err, "create docs directory")
		}
		return errors.Wrapf(gen(root, target), "write %s docs to %s", format, target)
	}
	return cmd
}
