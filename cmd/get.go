package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quote-cli/internal/fetcher"
	"github.com/sells-group/quote-cli/internal/model"
)

var (
	getFile        string
	getFormat      string
	getIsolate     bool
	getConcurrency int
	getRecord      bool
)

var getCmd = &cobra.Command{
	Use:   "get [url...]",
	Short: "Fetch quotes for one or more URLs",
	Long:  "Fetches every URL concurrently and prints one result per URL, in the order given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := checkFormat(getFormat); err != nil {
			return err
		}

		if cmd.Flags().Changed("isolate-failures") {
			cfg.Quotes.IsolateFailures = getIsolate
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Quotes.MaxConcurrency = getConcurrency
		}
		if err := cfg.Validate("get"); err != nil {
			return err
		}

		urls := append([]string{}, args...)
		if getFile != "" {
			fileURLs, err := fetcher.ReadURLsFile(ctx, getFile)
			if err != nil {
				return err
			}
			urls = append(urls, fileURLs...)
		}

		env, err := initApp(ctx, quoteOptions(cfg.Quotes), getRecord)
		if err != nil {
			return err
		}
		defer env.Close()

		results, runID, err := runQuotes(ctx, env.Quotes, env.Store, urls)
		if err != nil {
			return eris.Wrap(err, "get")
		}
		if runID != "" {
			zap.L().Info("run recorded", zap.String("run_id", runID))
		}

		return writeResults(cmd.OutOrStdout(), getFormat, results)
	},
}

func init() {
	getCmd.Flags().StringVar(&getFile, "file", "", "read URLs from a .csv, .json, .xml sitemap or plain text file")
	getCmd.Flags().StringVar(&getFormat, "format", "json", "output format (json, yaml, table)")
	getCmd.Flags().BoolVar(&getIsolate, "isolate-failures", false, "report transport errors as FAILURE results instead of aborting")
	getCmd.Flags().IntVar(&getConcurrency, "concurrency", 0, "max in-flight fetches (0 = unlimited)")
	getCmd.Flags().BoolVar(&getRecord, "record", false, "save the run to the history store")
	rootCmd.AddCommand(getCmd)
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml", "table":
		return nil
	}
	return eris.Errorf("unknown format %q (want json, yaml or table)", format)
}

// writeResults renders a result set in the requested format.
func writeResults(w io.Writer, format string, results []model.Result) error {
	if results == nil {
		results = []model.Result{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "table":
		formatResultsTable(w, results)
		return nil
	}
	return checkFormat(format)
}

func formatResultsTable(out io.Writer, results []model.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tKIND\tMESSAGE")
	_, _ = fmt.Fprintln(w, "-\t----\t-------")
	for i, r := range results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Kind, r.Message)
	}
	_ = w.Flush()
}
