// # pydoc-export
//
// `pydoc-export` walks a directory of Python sources and writes one
// documentation page per module, as HTML or reStructuredText. The sources
// are read statically: nothing is imported or executed, so a project with
// missing dependencies or import-time side effects documents just as well.
//
// Key capabilities:
//
//   - discover every `.py` file below the input directory, optionally
//     honoring `.gitignore` files and extra ignore patterns.
//   - name modules after their package chain (`pkg/sub/mod.py` becomes
//     `pkg.sub.mod` when `pkg` and `pkg/sub` hold an `__init__.py`).
//   - document module, class, function and attribute docstrings, including
//     numpy and Google style sections, doctest blocks and `#:` comments.
//   - resolve base classes across modules and list ancestors and inherited
//     members, linked to the page that defines them.
//   - emit HTML pages with optional highlighted source, or
//     reStructuredText using the Sphinx Python domain.
//   - ship a Cobra-powered CLI with `list`, `show`, shell completion, and a
//     `gen-docs` helper for publishing the CLI reference itself.
//
// ## Usage
//
//	pydoc-export [flags]
//
// Examples:
//
//   - Export HTML for the current directory into ./doc:
//
//     pydoc-export
//
//   - Export reStructuredText plus an index page:
//
//     pydoc-export -i ./src -o ./docs/api -t rst --index
//
//   - List the modules a run would document:
//
//     pydoc-export list -i ./src --format json
//
//   - Read one module in the terminal:
//
//     pydoc-export show mypkg.core -i ./src
//
// ## Supported Flags
//
//   - `-i, --input DIR`: root directory of the project (default `.`).
//   - `-o, --output DIR`: output directory, created when missing and never
//     emptied (default `doc`).
//   - `-t, --type html|rst`: output format (default `html`).
//   - `--exclude PATTERN`: skip modules whose dotted name matches the
//     wildcard pattern; repeatable.
//   - `--ignore PATTERN`: skip paths matching a gitignore pattern; repeatable.
//   - `--gitignore`: honor `.gitignore` and `.git/info/exclude` files.
//   - `--show-source`: embed highlighted source code in each page.
//   - `--index`: also write `index.html` or `index.rst`.
//   - `-j, --jobs N`: number of files parsed in parallel.
//   - `-v, --verbose`: log each discovered, parsed and written module.
//
// ## Configuration
//
// Every flag can also be set through a `PYDOCEXPORT_*` environment variable
// (`PYDOCEXPORT_TYPE=rst`, `PYDOCEXPORT_SHOW_SOURCE=true`) or in the
// `[tool.pydoc-export]` table of the input directory's `pyproject.toml`:
//
//	[tool.pydoc-export]
//	output = "docs/api"
//	type = "rst"
//	exclude = ["*.tests.*"]
//
// Flags win over the environment, which wins over `pyproject.toml`. A
// relative `output` in `pyproject.toml` is resolved against the input
// directory.
//
// ## Shell Completion
//
// Autocompletion is provided via Cobra's generators:
//
//	pydoc-export completion bash        # bash
//	pydoc-export completion zsh         # zsh
//	pydoc-export completion fish | source
//	pydoc-export completion powershell | Out-String | Invoke-Expression
//
// ## CLI Docs
//
//	pydoc-export gen-docs ./docs/cli
//
// Every command becomes its own Markdown file under the provided directory;
// `--format rst` writes reStructuredText pages instead.
package main
