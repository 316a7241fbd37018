package cmd

import (
	"fmt"
	"sort"
	"strings"

	lxerrors "github.com/jmurray2011/lexicon/internal/errors"
	"github.com/jmurray2011/lexicon/internal/source"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured source aliases",
	Long: `List source aliases defined in the alias file.

Source aliases can be defined in ~/.lexicon/config.yaml:

  sources:
    local:
      uri: file:///usr/share/lexicon/dictionary.json
    us:
      uri: oxford:///en-us
    gb:
      uri: oxford:///
      language: en-gb

  default_source: "@local"

Use aliases with @ prefix in commands:
  lexicon lookup run -s @local
  lexicon repl -s @us`,
	RunE: runSources,
}

var sourcesAddLanguage string

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name> <uri>",
	Short: "Add or replace a source alias",
	Long: `Add a source alias to the alias file, replacing any alias of the
same name. Bare paths are stored as file:// URIs.

Examples:
  lexicon sources add local ./dictionary.json
  lexicon sources add us oxford:/// --language en-us`,
	Args: cobra.ExactArgs(2),
	RunE: runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a source alias",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesAddCmd.Flags().StringVar(&sourcesAddLanguage, "language", "", "Language override for oxford sources")
}

func runSources(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		app.Render.Info("No source aliases configured.")
		app.Render.Newline()
		app.Render.Info("Create aliases in %s:", source.ConfigPath())
		app.Render.Newline()
		app.Render.Info("  sources:")
		app.Render.Info("    local:")
		app.Render.Info("      uri: file:///usr/share/lexicon/dictionary.json")
		app.Render.Info("    us:")
		app.Render.Info("      uri: oxford:///en-us")
	} else {
		// Sort alias names for consistent output
		names := make([]string, 0, len(cfg.Sources))
		for name := range cfg.Sources {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			s := cfg.Sources[name]
			rows = append(rows, []string{"@" + name, s.URI, s.Language})
		}
		app.Render.Table([]string{"ALIAS", "URI", "LANGUAGE"}, rows)

		if cfg.DefaultSource != "" {
			app.Render.Newline()
			app.Render.KeyValue("Default source", cfg.DefaultSource)
		}
	}

	app.Render.Newline()
	app.Render.KeyValue("Schemes", strings.Join(source.Schemes(), ", "))
	return nil
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	name := strings.TrimPrefix(args[0], "@")
	if name == "" {
		return fmt.Errorf("alias name cannot be empty")
	}

	uri, err := source.Normalize(args[1])
	if err != nil {
		return err
	}

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Sources[name] = source.SourceAlias{URI: uri, Language: sourcesAddLanguage}
	if err := source.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Added @%s -> %s", name, uri)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	name := strings.TrimPrefix(args[0], "@")

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, ok := cfg.Sources[name]; !ok {
		available := make([]string, 0, len(cfg.Sources))
		for k := range cfg.Sources {
			available = append(available, "@"+k)
		}
		return lxerrors.SourceNotFoundError("@"+name, available)
	}

	delete(cfg.Sources, name)
	if cfg.DefaultSource == "@"+name {
		cfg.DefaultSource = ""
		app.Render.Warning("@%s was the default source; default_source cleared", name)
	}
	if err := source.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Removed @%s", name)
	return nil
}
