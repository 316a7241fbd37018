package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmurray2011/lexicon/internal/cloudwatch"
	"github.com/jmurray2011/lexicon/internal/dictionary"
	lxerrors "github.com/jmurray2011/lexicon/internal/errors"
	"github.com/jmurray2011/lexicon/internal/local"
	"github.com/jmurray2011/lexicon/internal/logging"
	"github.com/jmurray2011/lexicon/internal/output"
	"github.com/jmurray2011/lexicon/internal/oxford"
	"github.com/jmurray2011/lexicon/internal/source"
	"github.com/jmurray2011/lexicon/internal/ui"
	"github.com/jmurray2011/lexicon/pkg/timeutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appContextKey is the context key for the App instance.
type appContextKey struct{}

// OxfordConfig holds the online dictionary settings.
type OxfordConfig struct {
	AppID    string
	AppKey   string
	Endpoint string
	Language string
	Timeout  time.Duration
}

// Config holds all configuration values resolved from flags, env and files.
type Config struct {
	Source       string
	Capacity     int
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Quiet        bool

	Oxford OxfordConfig

	// CloudWatch metrics publishing; disabled when Namespace is empty.
	Namespace     string
	Profile       string
	Region        string
	FlushInterval time.Duration
}

// App holds the application dependencies that can be injected for testing.
type App struct {
	Config Config
	Render *ui.Renderer
	Logger logging.Logger
}

// Searcher is satisfied by *dictionary.Dictionary and *dictionary.Synchronized.
type Searcher interface {
	Search(ctx context.Context, word string) (dictionary.Record, dictionary.Tier, error)
	Cached() []string
	Close() error
}

// NewApp creates a new App with default configuration from viper.
func NewApp() *App {
	cfg := Config{
		Source:       viper.GetString("source"),
		Capacity:     viper.GetInt("capacity"),
		OutputFormat: viper.GetString("output"),
		Verbose:      IsVerbose(),
		NoColor:      noColor,
		Quiet:        quiet,
		Oxford: OxfordConfig{
			AppID:    viper.GetString("oxford.app_id"),
			AppKey:   viper.GetString("oxford.app_key"),
			Endpoint: viper.GetString("oxford.endpoint"),
			Language: viper.GetString("oxford.language"),
			Timeout:  viper.GetDuration("oxford.timeout"),
		},
		Namespace:     viper.GetString("cloudwatch.namespace"),
		Profile:       viper.GetString("profile"),
		Region:        viper.GetString("region"),
		FlushInterval: viper.GetDuration("cloudwatch.flush_interval"),
	}

	return NewAppWithConfig(cfg, render, logging.Default())
}

// NewAppWithConfig creates a new App with the given configuration.
// This is primarily used for testing.
func NewAppWithConfig(cfg Config, renderer *ui.Renderer, logger logging.Logger) *App {
	if renderer == nil {
		renderer = ui.NewRenderer()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &App{
		Config: cfg,
		Render: renderer,
		Logger: logger,
	}
}

// GetApp retrieves the App from the command context.
// If no App is set, it creates a new default one.
func GetApp(cmd *cobra.Command) *App {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appContextKey{}).(*App); ok {
			return app
		}
	}
	return NewApp()
}

// SetApp stores the App in the context for a command.
func SetApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// Debugf prints a debug message if verbose mode is enabled.
// This is a method on App to allow per-instance verbose control.
func (a *App) Debugf(format string, args ...interface{}) {
	if a.Config.Verbose {
		a.Render.Debug(format, args...)
	}
}

// SourceURI returns the source to open: the configured one, else the
// alias file's default_source, else DefaultSource.
func (a *App) SourceURI() string {
	if a.Config.Source != "" {
		return a.Config.Source
	}
	if cfg, err := source.LoadConfig(); err == nil && cfg.DefaultSource != "" {
		a.Debugf("Using default_source %s from %s", cfg.DefaultSource, source.ConfigPath())
		return cfg.DefaultSource
	}
	return DefaultSource
}

// OpenSource opens the configured backend.
func (a *App) OpenSource() (dictionary.Source, error) {
	uri := a.SourceURI()
	a.Debugf("Opening source %s", uri)

	src, err := source.Open(uri, source.OpenOptions{
		AppID:    a.Config.Oxford.AppID,
		AppKey:   a.Config.Oxford.AppKey,
		Endpoint: a.Config.Oxford.Endpoint,
		Language: a.Config.Oxford.Language,
		Timeout:  a.Config.Oxford.Timeout,
		Logger:   a.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	switch s := src.(type) {
	case *local.Source:
		a.Debugf("Loaded %d entries from %s (%d skipped)", s.Len(), s.Path(), s.Skipped())
	case *oxford.Source:
		a.Debugf("Looking up words in language %s", s.Language())
	}
	return src, nil
}

// NewSearcher builds a dictionary over src. Concurrent callers need
// concurrent=true, which wraps it with dictionary.Synchronized.
func (a *App) NewSearcher(src dictionary.Source, metrics dictionary.Metrics, concurrent bool) (Searcher, error) {
	if a.Config.Capacity < 1 {
		return nil, lxerrors.InvalidCapacityError(a.Config.Capacity)
	}

	opts := []dictionary.Option{
		dictionary.WithCapacity(a.Config.Capacity),
		dictionary.WithLogger(a.Logger),
	}
	if metrics != nil {
		opts = append(opts, dictionary.WithMetrics(metrics))
	}

	d, err := dictionary.New(src, opts...)
	if err != nil {
		return nil, err
	}
	a.Debugf("Cache capacity %d, source tier %s", d.Capacity(), src.Tier())

	if concurrent {
		return dictionary.NewSynchronized(d), nil
	}
	return d, nil
}

// Publisher returns a CloudWatch metrics publisher when a namespace is
// configured, or nil.
func (a *App) Publisher(ctx context.Context, src dictionary.Source) (*cloudwatch.Publisher, error) {
	if a.Config.Namespace == "" {
		return nil, nil
	}

	client, err := cloudwatch.NewMetricsClient(ctx, a.Config.Profile, a.Config.Region)
	if err != nil {
		return nil, err
	}
	if r, err := cloudwatch.ResolvedRegion(ctx, a.Config.Profile, a.Config.Region); err == nil {
		a.Debugf("Publishing metrics to %s in %s", a.Config.Namespace, r)
	}

	return cloudwatch.NewPublisher(client, a.Config.Namespace,
		cloudwatch.WithDimension("Source", string(src.Tier())))
}

// Formatter returns an output formatter for the configured format.
func (a *App) Formatter(cmd *cobra.Command) (*output.Formatter, error) {
	format, err := output.ParseFormat(a.Config.OutputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, cmd.OutOrStdout(),
		ui.WithNoColor(a.Config.NoColor), ui.WithQuiet(a.Config.Quiet)), nil
}

// found pairs a record with the tier that produced it.
type found struct {
	rec  dictionary.Record
	tier dictionary.Tier
}

// timedSearch searches word and records how long it took.
func timedSearch(ctx context.Context, s Searcher, word string) output.Result {
	f, elapsed, err := timeutil.Measure(func() (found, error) {
		rec, tier, err := s.Search(ctx, word)
		return found{rec: rec, tier: tier}, err
	})
	return output.Result{
		Query:   word,
		Record:  f.rec,
		Tier:    f.tier,
		Elapsed: elapsed,
		Err:     err,
	}
}

// flushPublisher sends pending metrics, reporting failures as warnings.
func (a *App) flushPublisher(ctx context.Context, p *cloudwatch.Publisher) {
	if p == nil {
		return
	}
	if err := p.Flush(ctx); err != nil {
		a.Render.Warning("%v", err)
	}
}
