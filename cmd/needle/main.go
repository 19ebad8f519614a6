// Command needle is a thin front-end over the analyzer and comparator
// packages: it analyzes a set of video files, then searches the results
// for shared openings/endings. Directory walking, recursive discovery, and
// presentation are intentionally minimal here — the engine itself lives in
// pkg/needle.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/aksiksi/needle/internal/discovery"
	"github.com/aksiksi/needle/pkg/needle"
	"github.com/aksiksi/needle/pkg/needle/analyzer"
	"github.com/aksiksi/needle/pkg/needle/catalog"
	"github.com/aksiksi/needle/pkg/needle/comparator"
	"github.com/aksiksi/needle/pkg/needle/logging"
	"github.com/aksiksi/needle/pkg/needle/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	log := logging.Default()

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log, os.Args[2:])
	case "search":
		runSearch(log, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: needle <analyze|search> [flags] <path...>")
}

func runAnalyze(log logging.Logger, args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	openingPct := fs.Float64("opening-search-percentage", analyzer.DefaultOpeningSearchPercentage, "fraction of each video's start searched for an opening")
	endingPct := fs.Float64("ending-search-percentage", analyzer.DefaultEndingSearchPercentage, "fraction of each video's end searched for an ending")
	includeEndings := fs.Bool("include-endings", analyzer.DefaultIncludeEndings, "also search for a shared ending")
	hashDuration := fs.Float64("hash-duration", analyzer.DefaultHashDurationSeconds, "analysis window length, in seconds")
	noThreading := fs.Bool("no-threading", false, "disable per-video parallelism")
	force := fs.Bool("force", analyzer.DefaultForce, "recompute even if an unchanged artifact exists")
	recurse := fs.Bool("recurse", false, "recurse into directories given as input paths")
	catalogDB := fs.String("catalog-db", "", "path to a SQLite catalog db recording each analyzed video; empty disables the catalog")
	fs.Parse(args)

	paths, err := discovery.FindVideoFiles(context.Background(), fs.Args(), *recurse, true)
	if err != nil {
		log.Errorf("discovering video files: %v", err)
		os.Exit(1)
	}

	a, err := analyzer.New(paths,
		analyzer.WithOpeningSearchPercentage(*openingPct),
		analyzer.WithEndingSearchPercentage(*endingPct),
		analyzer.WithIncludeEndings(*includeEndings),
		analyzer.WithHashDurationSeconds(*hashDuration),
		analyzer.WithThreadedDecoding(!*noThreading),
		analyzer.WithForce(*force),
	)
	if err != nil {
		log.Errorf("configuring analyzer: %v", err)
		os.Exit(1)
	}

	if *catalogDB != "" {
		cat, err := catalog.Open(*catalogDB)
		if err != nil {
			log.Errorf("opening catalog db: %v", err)
			os.Exit(1)
		}
		defer cat.Close()
		a.WithCatalog(cat)
	}

	results, err := a.Run(context.Background(), true)
	if err != nil {
		log.Warnf("some videos failed to analyze: %v", err)
	}
	for i, path := range paths {
		log.Infof("%s: duration=%s opening_hashes=%d ending_hashes=%d",
			path, humanize.FormatFloat("", results[i].Duration), len(results[i].Opening), len(results[i].Ending))
	}
}

func runSearch(log logging.Logger, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	threshold := fs.Uint("hash-match-threshold", uint(comparator.DefaultHashMatchThreshold), "max Hamming distance counted as a hash match")
	minOpening := fs.Uint("min-opening-duration", uint(comparator.DefaultMinOpeningDuration), "minimum opening length, in seconds")
	minEnding := fs.Uint("min-ending-duration", uint(comparator.DefaultMinEndingDuration), "minimum ending length, in seconds")
	padding := fs.Float64("time-padding", float64(comparator.DefaultTimePadding), "seconds to widen each chosen interval by")
	includeEndings := fs.Bool("include-endings", comparator.DefaultIncludeEndings, "also search for a shared ending")
	useSkipFiles := fs.Bool("use-skip-files", false, "reuse valid .needle.skip.json sidecars instead of recomputing")
	writeSkipFiles := fs.Bool("write-skip-files", false, "write .needle.skip.json sidecars for computed results")
	noThreading := fs.Bool("no-threading", false, "disable per-pair parallelism")
	fs.Parse(args)

	paths := fs.Args()

	hashesByPath := make([]needle.FrameHashes, len(paths))
	for i, path := range paths {
		hashes, err := store.Read(store.PathFor(path))
		if err != nil {
			log.Errorf("%s: run `needle analyze` first: %v", path, err)
			os.Exit(1)
		}
		hashesByPath[i] = hashes
	}

	cmp, err := comparator.New(paths,
		comparator.WithHashMatchThreshold(uint16(*threshold)),
		comparator.WithMinOpeningDuration(uint16(*minOpening)),
		comparator.WithMinEndingDuration(uint16(*minEnding)),
		comparator.WithTimePadding(float32(*padding)),
		comparator.WithIncludeEndings(*includeEndings),
	)
	if err != nil {
		log.Errorf("configuring comparator: %v", err)
		os.Exit(1)
	}

	results, err := cmp.Run(hashesByPath, *useSkipFiles, *writeSkipFiles, !*noThreading)
	if err != nil {
		log.Errorf("search failed: %v", err)
		os.Exit(1)
	}
	for _, r := range results {
		fmt.Printf("%s: opening=%v ending=%v\n", r.Path, r.Opening, r.Ending)
	}
}
