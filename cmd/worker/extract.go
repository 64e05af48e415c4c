package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/internal/batch"
	"github.com/classified-extractor/internal/export"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	ads, err := batch.ReadAdsFile(c.File, c.NRows)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}
	paper := batch.Newspaper(c.File)
	if _, err := deps.Extractor.Engine(paper); err != nil {
		fmt.Fprintf(deps.Stderr, "error: file name %q does not start with a known newspaper code\n", c.File)
		return err
	}

	opts := requests.ExtractOptions{
		ExtractAddress: requests.Bool(c.Address),
		ExtractWage:    requests.Bool(c.Wage),
		Sandbox:        requests.Bool(c.Sandbox),
		UseCache:       requests.Bool(false),
	}
	fmt.Fprintf(deps.Stdout, "Will process %d ads from %s with %d workers\n", len(ads), paper, c.Workers)

	start := time.Now()
	var all []*models.AdResult
	for _, sp := range batch.Plan(len(ads), c.BatchSize, c.Skip) {
		results, failed, err := deps.Extractor.ExtractAll(deps.Ctx, ads[sp.Start:sp.End], opts, c.Workers, nil)
		if err != nil {
			return fmt.Errorf("extract ads %d-%d: %w", sp.Start, sp.End, err)
		}
		results = compact(results)

		path := batch.BatchFile(c.OutputDir, paper, "extract", sp.Checkpoint)
		if err := batch.WriteNDJSON(path, results); err != nil {
			return err
		}
		deps.Logger.Info("batch written",
			zap.String("file", path),
			zap.Int("ads", len(results)),
			zap.Int("failed", failed))
		fmt.Fprintf(deps.Stdout, "Extracted ads %d-%d -> %s\n", sp.Start, sp.End, path)
		all = append(all, results...)
	}

	out := batch.OutputFile(c.OutputDir, paper, "extract", c.NRows, "ndjson")
	if err := batch.WriteNDJSON(out, all); err != nil {
		return err
	}
	if c.XLSX {
		if err := writeWorkbook(batch.OutputFile(c.OutputDir, paper, "extract", c.NRows, "xlsx"), all); err != nil {
			return err
		}
	}
	fmt.Fprintf(deps.Stdout, "Completed %d ads in %s -> %s\n", len(all), time.Since(start).Round(time.Millisecond), out)
	return nil
}

func writeWorkbook(path string, results []*models.AdResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteAds(f, results)
}

// compact drops the nil slots ExtractAll leaves for failed ads.
func compact(results []*models.AdResult) []*models.AdResult {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
