// Command corecrawl-shuffle is the post-run graph transform's front end:
// it reads a crawl core edge log and writes an ID-assigned URL table
// alongside a deduped edge list. It consumes the core's edge log as its
// only interface to the crawl pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crawlkit/corecrawl/internal/shuffle"
)

const exitBadArgs = -1

func main() {
	cmd := &cobra.Command{
		Use:   "corecrawl-shuffle <edge_log> <url_table_out> <edge_list_out>",
		Short: "Shuffle a crawl core edge log into ID-assigned, deduped form",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				os.Exit(exitBadArgs)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2])
		},
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inPath, urlsOutPath, edgesOutPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("shuffle: opening edge log: %w", err)
	}
	defer in.Close()

	result, err := shuffle.Run(in)
	if err != nil {
		return fmt.Errorf("shuffle: reading edge log: %w", err)
	}

	urlsOut, err := os.Create(urlsOutPath)
	if err != nil {
		return fmt.Errorf("shuffle: creating url table: %w", err)
	}
	defer urlsOut.Close()
	if err := shuffle.WriteURLTable(urlsOut, result.URLs); err != nil {
		return fmt.Errorf("shuffle: writing url table: %w", err)
	}

	edgesOut, err := os.Create(edgesOutPath)
	if err != nil {
		return fmt.Errorf("shuffle: creating edge list: %w", err)
	}
	defer edgesOut.Close()
	if err := shuffle.WriteEdgeList(edgesOut, result.Edges); err != nil {
		return fmt.Errorf("shuffle: writing edge list: %w", err)
	}

	return nil
}
