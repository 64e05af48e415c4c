package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/batch"
	"github.com/classified-extractor/internal/resolve"
)

// Run executes the resolve command.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	ads, err := batch.ReadNDJSON[*models.AdResult](c.File)
	if err != nil {
		return err
	}
	if c.NRows > 0 && c.NRows < len(ads) {
		ads = ads[:c.NRows]
	}

	geocoders := deps.Geocoders
	if len(geocoders) == 0 {
		if geocoders, err = c.geocoders(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	}
	resolver := resolve.NewResolver(deps.Reference, deps.Logger, geocoders...)

	paper := batch.Newspaper(c.File)
	workers := c.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	var all []resolve.Resolution
	for _, sp := range batch.Plan(len(ads), c.BatchSize, c.Skip) {
		out := make([]resolve.Resolution, sp.End-sp.Start)
		g, ctx := errgroup.WithContext(deps.Ctx)
		g.SetLimit(workers)
		for i, ad := range ads[sp.Start:sp.End] {
			i, ad := i, ad
			g.Go(func() error {
				engine, err := deps.Extractor.Engine(ad.Newspaper)
				if err != nil {
					return fmt.Errorf("ad %s: %w", ad.ID, err)
				}
				res, err := resolver.Resolve(ctx, engine.Context, ad)
				if err != nil {
					return err
				}
				out[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("resolve ads %d-%d: %w", sp.Start, sp.End, err)
		}

		path := batch.BatchFile(c.OutputDir, paper, "resolve", sp.Checkpoint)
		if err := batch.WriteNDJSON(path, out); err != nil {
			return err
		}
		deps.Logger.Info("batch written", zap.String("file", path), zap.Int("ads", len(out)))
		fmt.Fprintf(deps.Stdout, "Resolved ads %d-%d -> %s\n", sp.Start, sp.End, path)
		all = append(all, out...)
	}

	final := batch.OutputFile(c.OutputDir, paper, "resolve", c.NRows, "ndjson")
	if err := batch.WriteNDJSON(final, all); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Completed %d ads in %s -> %s\n", len(all), time.Since(start).Round(time.Millisecond), final)
	return nil
}

// geocoders builds the providers named by --providers.
func (c *ResolveCmd) geocoders() ([]resolve.Geocoder, error) {
	var out []resolve.Geocoder
	for _, name := range c.Providers {
		switch name {
		case "geoapify":
			if c.GeoapifyKey == "" {
				return nil, fmt.Errorf("GEOAPIFY_API_KEY not set")
			}
			out = append(out, resolve.NewGeoapify(c.GeoapifyKey,
				resolve.WithBaseURL(c.GeoapifyURL),
				resolve.WithUserAgent(c.UserAgent)))
		case "nominatim":
			out = append(out, resolve.NewNominatim(c.NominatimInterval,
				resolve.WithBaseURL(c.NominatimURL),
				resolve.WithUserAgent(c.UserAgent)))
		default:
			return nil, fmt.Errorf("unknown geocoder %q", name)
		}
	}
	return out, nil
}
