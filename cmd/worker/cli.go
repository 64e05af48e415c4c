package main

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/internal/geo"
	"github.com/classified-extractor/internal/resolve"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *zap.Logger
	Config    config.ExtractorCfg
	Reference *geo.Reference
	Extractor *services.ExtractService
	// Geocoders overrides the providers built from ResolveCmd flags.
	Geocoders []resolve.Geocoder
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" default:"config/extractor.yaml" help:"Extractor config file (defaults apply when missing)"`

	Extract ExtractCmd `cmd:"" help:"Extract addresses and wages from a CSV of ads"`
	Merge   MergeCmd   `cmd:"" help:"Concatenate batch checkpoint files"`
	Resolve ResolveCmd `cmd:"" help:"Geocode extracted address candidates"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	File      string `arg:"" type:"existingfile" help:"CSV with a raw_content column; its name starts with the newspaper code"`
	OutputDir string `short:"o" default:"." type:"existingdir" help:"Output directory"`
	Address   bool   `default:"true" negatable:"" help:"Run the address pass"`
	Wage      bool   `default:"true" negatable:"" help:"Run the wage pass"`
	Sandbox   bool   `help:"Keep every wage candidate by tier"`
	NRows     int    `short:"n" help:"Maximum number of ads"`
	Skip      int    `short:"s" help:"Ads already extracted; whole batches before it are skipped"`
	BatchSize int    `short:"b" default:"100000" help:"Ads per checkpoint file"`
	Workers   int    `short:"w" default:"4" help:"Concurrent extractions"`
	XLSX      bool   `name:"xlsx" help:"Also write an Excel workbook"`
}

// MergeCmd is the "merge" subcommand.
type MergeCmd struct {
	Paper     string `arg:"" help:"Newspaper code, or a data file whose name starts with it"`
	Dir       string `short:"d" default:"." type:"existingdir" help:"Directory of batch files"`
	Stage     string `short:"s" default:"extract" enum:"extract,resolve" help:"Which batches to merge"`
	BatchSize int    `short:"b" default:"100000" help:"Batch size the files were written with"`
	NBatches  int    `short:"n" help:"Merge at most this many batches"`
	OutputDir string `short:"o" default:"." type:"existingdir" help:"Output directory"`
	Delete    bool   `default:"true" negatable:"" help:"Delete batch files after merging"`
}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	File      string `arg:"" type:"existingfile" help:"NDJSON written by extract"`
	OutputDir string `short:"o" default:"." type:"existingdir" help:"Output directory"`
	NRows     int    `short:"n" help:"Maximum number of ads"`
	Skip      int    `short:"s" help:"Ads already resolved; whole batches before it are skipped"`
	BatchSize int    `short:"b" default:"10000" help:"Ads per checkpoint file"`
	Workers   int    `short:"w" default:"1" help:"Concurrent ads"`

	Providers         []string      `default:"geoapify,nominatim" help:"Geocoders to query, in order (geoapify, nominatim)"`
	GeoapifyURL       string        `env:"GEOAPIFY_URL" default:"https://api.geoapify.com" help:"Geoapify base URL"`
	GeoapifyKey       string        `env:"GEOAPIFY_API_KEY" help:"Geoapify API key"`
	NominatimURL      string        `env:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org" help:"Nominatim base URL"`
	NominatimInterval time.Duration `default:"1s" help:"Minimum delay between Nominatim requests"`
	UserAgent         string        `default:"classified-extractor/1.0" help:"User-Agent sent to geocoders"`
}
