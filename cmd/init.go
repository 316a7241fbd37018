package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmurray2011/lexicon/internal/oxford"
	"github.com/jmurray2011/lexicon/internal/source"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lexicon configuration",
	Long: `Create default configuration and alias files.

Creates:
  ~/.lexicon.yaml            settings (capacity, output, Oxford endpoint)
  ~/.lexicon/config.yaml     source aliases

Oxford credentials are left commented out; set them in the file or
export LEXICON_OXFORD_APP_ID and LEXICON_OXFORD_APP_KEY.

Examples:
  # Create default config (won't overwrite existing)
  lexicon init

  # Force overwrite existing config
  lexicon init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config files")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	out := cmd.OutOrStdout()
	configPath := filepath.Join(home, ".lexicon.yaml")
	aliasPath := source.ConfigPath()

	if err := createFileIfNotExists(out, configPath, generateDefaultConfig(), initForce); err != nil {
		return err
	}
	if err := createFileIfNotExists(out, aliasPath, defaultAliases, initForce); err != nil {
		return err
	}

	fmt.Fprintln(out, "Initialized lexicon configuration:")
	fmt.Fprintf(out, "  Config:  %s\n", configPath)
	fmt.Fprintf(out, "  Aliases: %s\n", aliasPath)
	fmt.Fprintf(out, "\nEdit %s to customize your settings.\n", configPath)

	return nil
}

func generateDefaultConfig() string {
	return fmt.Sprintf(`# lexicon configuration

# Dictionary source: oxford:///<lang>, file:///path, or @alias
# source: %s

# Number of recently used words kept in the cache
capacity: 1

# Default output format: text, json, yaml
output: text

# Oxford Dictionaries API
oxford:
  # app_id: your-app-id
  # app_key: your-app-key
  endpoint: %s
  language: %s
  timeout: %s

# Publish lookup metrics to CloudWatch
# profile: my-aws-profile
# region: us-east-1
# cloudwatch:
#   namespace: Lexicon
#   flush_interval: 1m
`, DefaultSource, oxford.DefaultEndpoint, oxford.DefaultLanguage, oxford.DefaultTimeout)
}

const defaultAliases = `# lexicon source aliases; use them as -s @name
sources:
  gb:
    uri: oxford:///en-gb
  us:
    uri: oxford:///en-us
  # local:
  #   uri: file:///usr/share/lexicon/dictionary.json

# default_source: "@gb"
`

func createFileIfNotExists(out io.Writer, path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  %s already exists (use --force to overwrite)\n", path)
			return nil
		}
	}

	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "  Created %s\n", path)
	return nil
}
