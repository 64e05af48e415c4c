package batch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// MergeOptions locates the checkpoints of one stage.
type MergeOptions struct {
	Dir       string
	Paper     string
	Stage     string
	BatchSize int
	// MaxBatches limits the batches read; 0 reads until a file is missing.
	MaxBatches int
}

// Files lists the existing checkpoint files in row order, stopping at the
// first gap.
func (o MergeOptions) Files() ([]string, error) {
	if o.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	var files []string
	for i := 0; o.MaxBatches <= 0 || i < o.MaxBatches; i++ {
		path := BatchFile(o.Dir, o.Paper, o.Stage, o.BatchSize*(i+1))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			break
		} else if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// Merge concatenates the checkpoint files into w and returns the files it
// read. Lines are copied verbatim.
func Merge(o MergeOptions, w io.Writer) ([]string, error) {
	files, err := o.Files()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if err := appendFile(w, path); err != nil {
			return files, err
		}
	}
	return files, nil
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}

// Remove deletes files, joining every failure.
func Remove(files []string) error {
	var errs []error
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
