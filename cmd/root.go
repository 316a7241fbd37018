package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmurray2011/lexicon/internal/logging"
	"github.com/jmurray2011/lexicon/internal/oxford"
	"github.com/jmurray2011/lexicon/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultSource is used when neither flags, config nor the alias file name one.
const DefaultSource = "oxford:///" + oxford.DefaultLanguage

var (
	cfgFile      string
	sourceURI    string
	capacity     int
	outputFormat string
	verbose      bool
	noColor      bool
	quiet        bool
	profile      string
	region       string
	cwNamespace  string

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Look up words through a recency cache",
	Long: `lexicon - look up word definitions from a local dataset or the Oxford
Dictionaries API, keeping the most recently used words in a small cache.

Every lookup reports where the record came from: the cache, the local
dataset, or the online dictionary.

Source URIs:
  oxford:///en-gb                   Oxford Dictionaries API (default)
  file:///path/to/dictionary.json   Local dataset (JSON or YAML)
  ./dictionary.json                 Local dataset (shorthand)
  @alias-name                       Alias from ~/.lexicon/config.yaml

Configuration:
  Settings are read from ~/.lexicon.yaml and LEXICON_* environment
  variables. Oxford credentials are never built in:

    export LEXICON_OXFORD_APP_ID=...
    export LEXICON_OXFORD_APP_KEY=...

Examples:
  # Look up a word online
  lexicon lookup foothill

  # Look up words in a local dataset with a bigger cache
  lexicon lookup run walk run -s ./dictionary.json -c 10

  # Interactive lookups, reloading the dataset when it changes
  lexicon repl -s ./dictionary.json --watch`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initRenderer, initLogging)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.lexicon.yaml)")
	flags.StringVarP(&sourceURI, "source", "s", "", "Dictionary source URI or @alias (default "+DefaultSource+")")
	flags.IntVarP(&capacity, "capacity", "c", 0, "Number of records kept in the cache (default 1)")
	flags.StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, yaml")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&quiet, "quiet", false, "Suppress status messages")
	flags.StringVar(&cwNamespace, "cloudwatch-namespace", "", "Publish lookup metrics to this CloudWatch namespace")
	flags.StringVarP(&profile, "profile", "p", "", "AWS profile for CloudWatch metrics")
	flags.StringVarP(&region, "region", "r", "", "AWS region for CloudWatch metrics")

	// Bind flags to viper
	_ = viper.BindPFlag("source", flags.Lookup("source"))
	_ = viper.BindPFlag("capacity", flags.Lookup("capacity"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("profile", flags.Lookup("profile"))
	_ = viper.BindPFlag("region", flags.Lookup("region"))
	_ = viper.BindPFlag("cloudwatch.namespace", flags.Lookup("cloudwatch-namespace"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	render = ui.NewRendererWithOptions(
		ui.WithNoColor(noColor || os.Getenv("NO_COLOR") != ""),
		ui.WithQuiet(quiet),
	)
}

// initLogging points the default logger at stderr and applies -v.
func initLogging() {
	logger := logging.New()
	if IsVerbose() {
		logger.SetLevel(logging.LevelDebug)
	} else if quiet {
		logger.SetLevel(logging.LevelError)
	} else {
		logger.SetLevel(logging.LevelWarn)
	}
	logging.SetDefault(logger)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

// Debugf prints a debug message if verbose mode is enabled
func Debugf(format string, args ...interface{}) {
	if IsVerbose() {
		render.Debug(format, args...)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			// Also check ~/.lexicon/ directory
			viper.AddConfigPath(home + "/.lexicon")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".lexicon")
		viper.SetConfigType("yaml")
	}

	// Environment variables: LEXICON_CAPACITY, LEXICON_OXFORD_APP_ID, ...
	viper.SetEnvPrefix("LEXICON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}
}

// setDefaults registers built-in defaults. The source has none here so
// that default_source in the alias file can apply.
func setDefaults(v *viper.Viper) {
	v.SetDefault("capacity", 1)
	v.SetDefault("output", "text")
	v.SetDefault("oxford.endpoint", oxford.DefaultEndpoint)
	v.SetDefault("oxford.language", oxford.DefaultLanguage)
	v.SetDefault("oxford.timeout", oxford.DefaultTimeout)
	v.SetDefault("cloudwatch.flush_interval", time.Minute)
}
