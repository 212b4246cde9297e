package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger

	source    string
	debug     bool
	term      string
	author    string
	cats      []string
	timeout   time.Duration
	userAgent string
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Browse a book catalog from the command line",
	Long: `catalogctl loads a catalog (a libros.json file, an http(s) URL or a
Postgres DSN) and lists its filter options or the books matching a search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg)

		if logger != nil {
			return nil
		}
		level := "warn"
		if debug {
			level = "debug"
		}
		logger, err = logging.New(level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the authors and categories present in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print the books matching a title term, author and categories",
	Long: `Prints one card per matching book, in catalog order.

Examples:
  catalogctl search --q war
  catalogctl search --author Austen
  catalogctl search --category Fiction --category Drama`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&source, "source", "./libros.json", "catalog file, URL or Postgres DSN, env CATALOG_SOURCE")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for fetching a remote catalog, env HTTP_TIMEOUT")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "bookcatalog/1.0", "User-Agent for remote catalogs, env USER_AGENT")

	searchCmd.Flags().StringVar(&term, "q", "", "case-insensitive title substring")
	searchCmd.Flags().StringVar(&author, "author", "", "exact author")
	searchCmd.Flags().StringArrayVar(&cats, "category", nil, "category to match (repeatable)")

	rootCmd.AddCommand(optionsCmd, searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyConfig fills every flag the user did not pass from the environment.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("source") {
		source = cfg.CatalogSource
	}
	if !flags.Changed("timeout") {
		timeout = cfg.HTTPTimeout
	}
	if !flags.Changed("user-agent") {
		userAgent = cfg.UserAgent
	}
}

func loadService(cmd *cobra.Command) (*catalog.Service, func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, closeSource, err := catalog.OpenSource(ctx, source, catalog.SourceOptions{
		UserAgent: userAgent,
		Timeout:   timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	svc := catalog.NewService(src, logger)
	if err := svc.Load(ctx); err != nil {
		closeSource()
		return nil, nil, err
	}
	return svc, closeSource, nil
}

func runOptions(cmd *cobra.Command, args []string) error {
	svc, closeSource, err := loadService(cmd)
	if err != nil {
		return loadFailure(err)
	}
	defer closeSource()

	opts, err := svc.Options()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Authors:")
	for _, a := range opts.Authors {
		fmt.Fprintf(out, "  %s\n", a)
	}
	fmt.Fprintln(out, "Categories:")
	for _, c := range opts.Categories {
		fmt.Fprintf(out, "  %s\n", c)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, closeSource, err := loadService(cmd)
	if err != nil {
		return loadFailure(err)
	}
	defer closeSource()

	res, err := svc.Search(catalog.Query{Term: term, Author: author, Categories: cats})
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), res)
	return nil
}

func printResults(out io.Writer, res catalog.Results) {
	if res.Empty {
		fmt.Fprintln(out, res.Message)
		return
	}
	for i, c := range res.Cards {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", c.Title)
		fmt.Fprintf(out, "  Author:     %s\n", c.Author)
		fmt.Fprintf(out, "  Location:   %s\n", c.Location)
		fmt.Fprintf(out, "  Categories: %s\n", c.Categories)
		if c.Cover != "" {
			fmt.Fprintf(out, "  Cover:      %s\n", c.Cover)
		}
	}
}

func loadFailure(err error) error {
	logger.Debug("load failed", zap.Error(err))
	return fmt.Errorf("%s (%s)", catalog.LoadFailedMessage, strings.TrimSpace(err.Error()))
}
