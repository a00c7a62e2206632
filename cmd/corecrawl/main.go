// Command corecrawl is the crawl core's command-line front end: it loads
// a seed file, wires internal/core with the tunables from internal/env,
// runs the crawl to completion and exits. The seed file format, argument
// count and exit codes are an external contract the crawl core does not
// itself specify.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crawlkit/corecrawl/internal/core"
	"github.com/crawlkit/corecrawl/internal/env"
)

// Exit codes match this system's original front end: -1 for a wrong
// argument count, -2 when the seed file can't be loaded or is empty.
const (
	exitBadArgs    = -1
	exitBadSeeds   = -2
	exitCrawlError = 1
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCrawlError)
	}
}

func newRootCmd() *cobra.Command {
	var (
		maxSeeds      int
		maxCandidates int
		maxResps      int
		maxTotalSeeds int
		bfM           int
		bfN           int
		timeoutIdle   string
		timeoutPush   string
	)

	cmd := &cobra.Command{
		Use:   "corecrawl <seeds_file> <out_file>",
		Short: "Run a breadth-first crawl from a seed file",
		Args: func(cmd *cobra.Command, args []string) error {
			// Exit code -1 on a wrong argument count is part of this
			// system's external contract, not a cobra usage error.
			if len(args) != 2 {
				os.Exit(exitBadArgs)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(args[0], args[1], cobraTunables{
				maxSeeds:      maxSeeds,
				maxCandidates: maxCandidates,
				maxResps:      maxResps,
				maxTotalSeeds: maxTotalSeeds,
				bfM:           bfM,
				bfN:           bfN,
				timeoutIdle:   timeoutIdle,
				timeoutPush:   timeoutPush,
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&maxSeeds, "max-seeds", env.GetEnvAsInt("COREcrawl_MAX_SEEDS", core.MaxSeeds), "capacity of the seeds queue")
	flags.IntVar(&maxCandidates, "max-candidates", env.GetEnvAsInt("COREcrawl_MAX_CANDIDATES", core.MaxCandidates), "capacity of the candidates queue")
	flags.IntVar(&maxResps, "max-responses", env.GetEnvAsInt("COREcrawl_MAX_RESPS", core.MaxResps), "capacity of the responses queue")
	flags.IntVar(&maxTotalSeeds, "max-total-seeds", env.GetEnvAsInt("COREcrawl_MAX_TOTAL_SEEDS", core.MaxTotalSeeds), "total URLs dispatched per run")
	flags.IntVar(&bfM, "bloom-bits", env.GetEnvAsInt("COREcrawl_BF_M", core.BFM), "Bloom filter bit count")
	flags.IntVar(&bfN, "bloom-inserts", env.GetEnvAsInt("COREcrawl_BF_N", core.BFN), "Bloom filter intended insert count")
	flags.StringVar(&timeoutIdle, "timeout-idle", env.GetEnv("COREcrawl_TIMEOUT_IDLE", core.TimeoutIdle.String()), "seeds-queue idle shutdown timeout")
	flags.StringVar(&timeoutPush, "timeout-push", env.GetEnv("COREcrawl_TIMEOUT_PUSH", core.TimeoutPush.String()), "inter-stage back-pressure push timeout")

	return cmd
}

type cobraTunables struct {
	maxSeeds, maxCandidates, maxResps, maxTotalSeeds, bfM, bfN int
	timeoutIdle, timeoutPush                                  string
}

func runCrawl(seedsPath, outPath string, t cobraTunables) error {
	log := logrus.New()

	seeds, err := loadSeeds(seedsPath)
	if err != nil || len(seeds) == 0 {
		log.WithError(err).Error("corecrawl: failed to load seeds")
		os.Exit(exitBadSeeds)
	}

	cfg := core.DefaultConfig(outPath)
	// cfg.EdgeFeed is deliberately left nil here: no concrete downstream
	// transport is named anywhere in this repo's scope, so this binary
	// only ever writes the edge log file. internal/messaging.ChannelQueue
	// exists for callers embedding internal/core directly (see
	// core_test.go's live-feed test), not for this CLI.
	cfg.MaxSeeds = t.maxSeeds
	cfg.MaxCandidates = t.maxCandidates
	cfg.MaxResps = t.maxResps
	cfg.MaxTotalSeeds = int64(t.maxTotalSeeds)
	cfg.BFM = t.bfM
	cfg.BFN = t.bfN
	if d, err := time.ParseDuration(t.timeoutIdle); err == nil {
		cfg.TimeoutIdle = d
	}
	if d, err := time.ParseDuration(t.timeoutPush); err == nil {
		cfg.TimeoutPush = d
	}

	c, err := core.New(cfg, log)
	if err != nil {
		return fmt.Errorf("corecrawl: constructing core: %w", err)
	}
	defer c.Close()

	for _, s := range seeds {
		c.Seed(s)
	}

	log.WithField("seeds", len(seeds)).Info("corecrawl: starting crawl")
	if err := c.Run(); err != nil {
		return fmt.Errorf("corecrawl: running crawl: %w", err)
	}
	log.Info("corecrawl: crawl finished")
	return nil
}

// loadSeeds reads one URL per line, trimming only leading/trailing ASCII
// spaces (not full Unicode whitespace), matching this system's original
// seed loader. A blank line becomes an empty seed entry.
func loadSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		seeds = append(seeds, trimASCIISpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return seeds, nil
}

func trimASCIISpace(s string) string {
	return strings.Trim(s, " ")
}
