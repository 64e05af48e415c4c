package main

import (
	"fmt"
	"os"

	"github.com/classified-extractor/internal/batch"
)

// Run executes the merge command.
func (c *MergeCmd) Run(deps *Dependencies) (err error) {
	paper := batch.Newspaper(c.Paper)
	opts := batch.MergeOptions{
		Dir:        c.Dir,
		Paper:      paper,
		Stage:      c.Stage,
		BatchSize:  c.BatchSize,
		MaxBatches: c.NBatches,
	}

	out := batch.OutputFile(c.OutputDir, paper, c.Stage+"-merged", 0, "ndjson")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	files, err := batch.Merge(opts, f)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no %s batches for %s in %s\n", c.Stage, paper, c.Dir)
		return fmt.Errorf("no batch files found")
	}
	fmt.Fprintf(deps.Stdout, "Merged %d batches -> %s\n", len(files), out)

	if c.Delete {
		if err := batch.Remove(files); err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Removed %d batch files\n", len(files))
	}
	return nil
}
