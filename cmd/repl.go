package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmurray2011/lexicon/internal/cloudwatch"
	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/internal/local"
	"github.com/jmurray2011/lexicon/internal/metrics/prom"
	"github.com/jmurray2011/lexicon/internal/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// replPrompt is printed before every input line.
const replPrompt = "Enter a word to lookup: "

var (
	replWatch       bool
	replMetricsAddr string
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Look up words interactively",
	Long: `Read words from standard input and look each one up.

Every answer shows the record and where it was found. The cache lives
for the whole session, so repeated words come back from the cache.

Commands:
  :cache   list cached words, most recently used first
  :quit    leave (Ctrl+D also works)

Examples:
  # Interactive lookups against the online dictionary
  lexicon repl

  # Reload the local dataset whenever the file changes
  lexicon repl -s ./dictionary.json --watch

  # Expose Prometheus metrics while the session runs
  lexicon repl --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replWatch, "watch", false, "Reload a local dataset when it changes")
	replCmd.Flags().StringVar(&replMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

func runRepl(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter, err := app.Formatter(cmd)
	if err != nil {
		return err
	}

	src, err := app.OpenSource()
	if err != nil {
		return err
	}

	var sinks dictionary.MultiMetrics

	publisher, err := app.Publisher(ctx, src)
	if err != nil {
		_ = src.Close()
		return err
	}
	if publisher != nil {
		sinks = append(sinks, publisher)
		go flushLoop(ctx, app, publisher)
		defer app.flushPublisher(context.WithoutCancel(ctx), publisher)
	}

	if replMetricsAddr != "" {
		reg := prometheus.NewRegistry()
		sinks = append(sinks, prom.New(reg, "lexicon", "", prometheus.Labels{"source": string(src.Tier())}))
		shutdown := serveMetrics(app, replMetricsAddr, reg)
		defer shutdown()
	}

	var metrics dictionary.Metrics
	if len(sinks) > 0 {
		metrics = sinks
	}

	searcher, err := app.NewSearcher(src, metrics, false)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer func() { _ = searcher.Close() }()

	if replWatch {
		if err := watchSource(ctx, app, src); err != nil {
			return err
		}
	}

	return repl(ctx, app, cmd.InOrStdin(), searcher, formatter.FormatResult)
}

// repl reads words from in until EOF, :quit or ctx is done.
func repl(ctx context.Context, app *App, in io.Reader, s Searcher, emit func(output.Result) error) error {
	lines := readLines(ctx, in)

	for {
		app.Render.Prompt(replPrompt)

		var line string
		select {
		case <-ctx.Done():
			app.Render.Newline()
			return nil
		case l, ok := <-lines:
			if !ok {
				app.Render.Newline()
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":cache":
			app.Render.Info("%s", strings.Join(s.Cached(), ", "))
			app.Render.Newline()
			continue
		}

		if err := emit(timedSearch(ctx, s, line)); err != nil {
			return err
		}
		app.Render.Newline()
	}
}

// readLines feeds lines from in to the returned channel until EOF or ctx
// is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// watchSource reloads a local dataset whenever its file changes.
func watchSource(ctx context.Context, app *App, src dictionary.Source) error {
	ls, ok := src.(*local.Source)
	if !ok {
		return fmt.Errorf("--watch needs a local dataset, not the %s source", src.Tier())
	}
	app.Render.Status("Watching %s for changes", ls.Path())
	return ls.Watch(ctx, func(entries int, err error) {
		if err != nil {
			app.Render.Warning("reload of %s failed, keeping previous entries: %v", ls.Path(), err)
			return
		}
		app.Render.Success("Reloaded %d entries from %s", entries, ls.Path())
	})
}

// serveMetrics exposes reg on addr and returns a shutdown func.
func serveMetrics(app *App, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Render.Warning("metrics server: %v", err)
		}
	}()
	app.Render.Status("Serving metrics on http://%s/metrics", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// flushLoop publishes CloudWatch metrics every flush interval until ctx
// is done.
func flushLoop(ctx context.Context, app *App, p *cloudwatch.Publisher) {
	interval := app.Config.FlushInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Flush(ctx); err != nil {
				app.Logger.Warn("metrics flush failed: %v", err)
			}
		}
	}
}
