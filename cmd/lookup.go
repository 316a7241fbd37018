package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/internal/output"
	"github.com/jmurray2011/lexicon/pkg/timeutil"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	lookupParallel bool
	lookupRepeat   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>...",
	Short: "Look up one or more words",
	Long: `Look up words through the cache and the configured source.

Each result shows the record, where it was found (cache, local or
oxford) and how long the search took. Words are searched in order
through one cache, so repeating a word shows a cache hit.

Examples:
  # Look up a word online (needs LEXICON_OXFORD_APP_ID/APP_KEY)
  lexicon lookup foothill

  # Search a local dataset; the second "run" comes from the cache
  lexicon lookup run walk run -s ./dictionary.json -c 2

  # Search every word twice to compare source and cache timings
  lexicon lookup run walk --repeat -s ./dictionary.json -c 2

  # Search concurrently and print JSON
  lexicon lookup run walk leap --parallel -o json -s @local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVar(&lookupParallel, "parallel", false, "Search all words concurrently")
	lookupCmd.Flags().BoolVar(&lookupRepeat, "repeat", false, "Search each word twice")
}

func runLookup(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := app.Formatter(cmd)
	if err != nil {
		return err
	}

	src, err := app.OpenSource()
	if err != nil {
		return err
	}

	publisher, err := app.Publisher(ctx, src)
	if err != nil {
		_ = src.Close()
		return err
	}
	var metrics dictionary.Metrics
	if publisher != nil {
		metrics = publisher
		defer app.flushPublisher(context.WithoutCancel(ctx), publisher)
	}

	searcher, err := app.NewSearcher(src, metrics, lookupParallel)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer func() { _ = searcher.Close() }()

	words := args
	if lookupRepeat {
		words = repeatWords(args)
	}

	start := time.Now()
	var results []output.Result
	if lookupParallel {
		results, err = searchParallel(ctx, searcher, words)
		if err != nil {
			return err
		}
	} else {
		results = searchSequential(ctx, searcher, words)
	}

	if err := formatter.FormatResults(results); err != nil {
		return err
	}
	app.Debugf("Searched %d words in %s; cache now holds %v",
		len(words), timeutil.FormatDuration(time.Since(start)), searcher.Cached())

	return lookupError(results)
}

// repeatWords returns each word twice in a row.
func repeatWords(words []string) []string {
	out := make([]string, 0, 2*len(words))
	for _, w := range words {
		out = append(out, w, w)
	}
	return out
}

func searchSequential(ctx context.Context, s Searcher, words []string) []output.Result {
	results := make([]output.Result, len(words))
	for i, w := range words {
		results[i] = timedSearch(ctx, s, w)
	}
	return results
}

// searchParallel searches all words concurrently. Results keep the
// order of words; lookup failures are recorded per result.
func searchParallel(ctx context.Context, s Searcher, words []string) ([]output.Result, error) {
	results := make([]output.Result, len(words))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, w := range words {
		g.Go(func() error {
			results[i] = timedSearch(ctx, s, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// lookupError summarises failed results, or returns nil.
func lookupError(results []output.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d lookups failed", failed, len(results))
}
