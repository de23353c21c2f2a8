// Package main provides the TruthBot command-line client.
//
// With -claim it checks a single claim and exits; otherwise it starts an
// interactive session reading one claim per line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"

	"truthbot/internal/config"
	"truthbot/internal/factcheck"
	"truthbot/internal/formatter"
	"truthbot/internal/logger"
	"truthbot/internal/models"
	"truthbot/internal/session"
	"truthbot/internal/verdict"
)

const (
	cliUserAgent      = "TruthBot-CLI/1.0"
	historyLabelWidth = 18
)

type options struct {
	claim   string
	history int
	asJSON  bool
	raw     bool
	health  bool
}

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	apiURL := flag.String("api-url", "", "TruthBot API base URL (overrides config and TRUTHBOT_API_BASE_URL)")
	verbose := flag.Bool("v", false, "Enable debug logging")

	var opts options

	flag.StringVar(&opts.claim, "claim", "", "Check a single claim and exit")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the parsed verdict as JSON")
	flag.BoolVar(&opts.raw, "raw", false, "Print the raw verdict markdown")
	flag.BoolVar(&opts.health, "health", false, "Check API health and exit")
	flag.IntVar(&opts.history, "history", 0, "List the N most recent checks and exit")

	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *apiURL != "" {
		cfg.Client.BaseURL = *apiURL
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}

	log := logger.NewLogger(level)

	client := factcheck.New(cfg.Client.BaseURL,
		factcheck.WithTimeout(cfg.ClientTimeout()),
		factcheck.WithLogger(log),
		factcheck.WithUserAgent(cliUserAgent),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client, log, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *factcheck.Client, log *logger.Logger, opts options, in io.Reader, out io.Writer) error {
	switch {
	case opts.health:
		if !client.Health(ctx) {
			return fmt.Errorf("API at %s is not reachable", client.BaseURL())
		}

		fmt.Fprintf(out, "✅ API at %s is healthy\n", client.BaseURL())

		return nil
	case opts.history > 0:
		return printHistory(ctx, client, opts.history, out)
	case opts.claim != "":
		resp, err := client.Check(ctx, opts.claim)
		if err != nil {
			return err
		}

		return printVerdict(out, resp.Verdict, verdict.ParseResponse(resp), opts)
	default:
		return repl(ctx, session.New(client, session.WithLogger(log)), opts, in, out)
	}
}

func printVerdict(out io.Writer, markdown string, v models.ParsedVerdict, opts options) error {
	switch {
	case opts.asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case opts.raw:
		_, err := fmt.Fprintln(out, markdown)
		return err
	default:
		_, err := fmt.Fprintln(out, formatter.Terminal(v, formatter.DefaultWidth))
		return err
	}
}

func printHistory(ctx context.Context, client *factcheck.Client, limit int, out io.Writer) error {
	records, err := client.History(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No saved checks.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintln(out, historyLine(r))
	}

	return nil
}

// historyLine renders one saved check with the verdict label padded to a
// fixed display width.
func historyLine(r models.CheckRecord) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		r.CreatedAt.Local().Format(time.DateTime),
		runewidth.FillRight(formatter.Label(r.VerdictType), historyLabelWidth),
		r.ID,
		r.Claim,
	)
}

func repl(ctx context.Context, s *session.Session, opts options, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s\n\nCommands: /retry, /reset, /quit\n\n", session.WelcomeMessage)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "claim> ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := s.Reset(); err != nil {
				fmt.Fprintf(out, "⚠️  %v\n", err)
			} else {
				fmt.Fprintln(out, "Conversation cleared.")
			}

			continue
		}

		var (
			v   *models.ParsedVerdict
			err error
		)

		if line == "/retry" {
			v, err = s.Retry(ctx)
		} else {
			fmt.Fprintln(out, "🔎 Searching the web and analyzing evidence...")
			v, err = s.Submit(ctx, line)
		}

		if errors.Is(err, context.Canceled) {
			return nil
		}

		if err != nil {
			if errors.Is(err, session.ErrNothingToRetry) {
				fmt.Fprintf(out, "⚠️  %v\n", err)
			} else {
				fmt.Fprintln(out, session.ErrorMessage(err))
				fmt.Fprintln(out, "Type /retry to try again.")
			}

			continue
		}

		markdown := ""
		if st := s.Snapshot(); len(st.Messages) >= 2 {
			markdown = st.Messages[len(st.Messages)-2].Content
		}

		if err := printVerdict(out, markdown, *v, opts); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n\n", formatter.FollowUp(v.VerdictType))
	}
}
