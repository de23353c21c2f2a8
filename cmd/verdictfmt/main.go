// Package main provides the verdict markdown tool: it parses, checks, renders
// and normalizes verdict documents from files, directories or stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"truthbot/internal/config"
	"truthbot/internal/formatter"
	"truthbot/internal/validator"
	"truthbot/internal/verdict"
)

type options struct {
	cfg      *config.Config
	claim    string
	terminal bool
	check    bool
	norm     bool
	write    bool
}

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	targetPath := flag.String("path", "-", "File or directory of verdict markdown (- for stdin)")

	var opts options

	flag.StringVar(&opts.claim, "claim", "", "Claim the verdict answers (default: the document's CLAIM line)")
	flag.BoolVar(&opts.terminal, "terminal", false, "Render as a terminal card instead of JSON")
	flag.BoolVar(&opts.check, "check", false, "Report format diagnostics")
	flag.BoolVar(&opts.norm, "normalize", false, "Re-render in the canonical verdict layout")
	flag.BoolVar(&opts.write, "write", false, "With -normalize, rewrite files in place")

	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	opts.cfg = cfg

	if *targetPath == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to read stdin: %v\n", err)
			os.Exit(1)
		}

		ok, err := process(os.Stdout, "stdin", string(content), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		if !ok {
			os.Exit(1)
		}

		return
	}

	count, failed := 0, 0

	err = filepath.Walk(*targetPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error accessing path %s: %v\n", path, err)
			failed++

			return nil
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.ToLower(filepath.Ext(path)) != ".md" {
			return nil
		}

		count++

		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to read %s: %v\n", path, err)
			failed++

			return nil
		}

		ok, err := process(os.Stdout, path, string(content), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to process %s: %v\n", path, err)
			failed++
		} else if !ok {
			failed++
		}

		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error walking path: %v\n", err)
		os.Exit(1)
	}

	if opts.check || (opts.norm && opts.write) {
		fmt.Printf("\n📈 Scanned %d files, %d with problems\n", count, failed)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// process handles one document and reports whether it passed.
func process(out io.Writer, name, content string, opts options) (bool, error) {
	claim := opts.claim
	if claim == "" {
		claim = verdict.ExtractClaim(content)
	}

	switch {
	case opts.check:
		result := validator.NewVerdictValidator(opts.cfg).Validate(content)

		fmt.Fprintf(out, "%s: %s\n", name, result.String())
		result.PrintErrors(out)
		result.PrintWarnings(out)

		return result.IsValid, nil
	case opts.norm:
		formatted := formatter.FormatMarkdown(content, claim)

		if opts.write && name != "stdin" {
			if formatted == content {
				return true, nil
			}

			if err := os.WriteFile(name, []byte(formatted), 0o644); err != nil {
				return false, err
			}

			fmt.Fprintf(out, "✅ Normalized: %s\n", name)

			return true, nil
		}

		_, err := fmt.Fprint(out, formatted)

		return true, err
	case opts.terminal:
		_, err := fmt.Fprintln(out, formatter.Terminal(verdict.Parse(content, claim, 0), formatter.DefaultWidth))
		return true, err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return true, enc.Encode(verdict.Parse(content, claim, 0))
	}
}
