package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jusnote/lawimporter/pkg/acquire"
	"github.com/jusnote/lawimporter/pkg/lawimport"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "lawimporter",
		Short:   "Import a Brazilian federal law into structured JSON",
		Version: version,
	}
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	var (
		urn          string
		lei          string
		output       string
		planaltoHTML string
		aliasFile    string
		cacheDir     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch and parse a law into the reader's JSON document shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			if urn == "" && lei == "" {
				return fmt.Errorf("%w: one of --urn or --lei is required", lawimport.ErrBadInput)
			}
			if aliasFile != "" {
				if err := acquire.LoadAliasFile(aliasFile); err != nil {
					return err
				}
			}

			var client *acquire.Client
			if cacheDir != "" {
				cache, err := acquire.NewDiskCache(cacheDir, 24*time.Hour)
				if err != nil {
					return err
				}
				client = acquire.NewClient(acquire.Config{Cache: cache})
			}

			outcome, err := lawimport.Run(lawimport.Options{
				URN:    urn,
				Alias:  lei,
				HTML:   planaltoHTML,
				Client: client,
			})
			if err != nil {
				return err
			}

			if output == "" {
				output = outcome.Document.Lei.ID + ".json"
			}
			if err := lawimport.WriteDocument(outcome.Document, output); err != nil {
				return err
			}

			report(cmd, outcome, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&urn, "urn", "", "canonical URN of the law to import")
	cmd.Flags().StringVar(&lei, "lei", "", "short alias of the law to import (e.g. codigo-penal)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON path (default: <lei.id>.json)")
	cmd.Flags().StringVar(&planaltoHTML, "planalto-html", "", "path to a local HTML file, bypassing the network")
	cmd.Flags().StringVar(&aliasFile, "alias-file", "", "YAML file of additional lei -> URN aliases")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for a persistent on-disk acquisition cache (disabled by default)")

	return cmd
}

// report writes the human-readable summary to stdout and diagnostics to
// stderr (spec §6: "Stdout is a human-readable report; stderr carries
// diagnostics").
func report(cmd *cobra.Command, outcome lawimport.Outcome, output string) {
	out := cmd.OutOrStdout()
	doc := outcome.Document

	fmt.Fprintf(out, "%s (%s)\n", doc.Lei.Nome, doc.Lei.ID)
	fmt.Fprintf(out, "  parser:    %s\n", outcome.ParserUsed)
	fmt.Fprintf(out, "  articles:  %d\n", len(doc.Artigos))
	fmt.Fprintf(out, "  output:    %s\n", output)
	if outcome.Stats.URNSlugMismatches > 0 {
		fmt.Fprintf(out, "  warnings:  %d URN→slug mismatches\n", outcome.Stats.URNSlugMismatches)
	}

	diag := log.New(os.Stderr, "", 0)
	for _, w := range outcome.Warnings {
		diag.Println("warning:", w)
	}
}
