// Package batch reads ad CSVs and manages the NDJSON checkpoint files a long
// extraction or resolution run leaves behind.
package batch

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/classified-extractor/app/requests"
)

// TextColumn holds the OCR text of an ad.
const TextColumn = "raw_content"

// ErrNoTextColumn is returned for a CSV without TextColumn.
var ErrNoTextColumn = errors.New("batch: missing " + TextColumn + " column")

// Newspaper derives the newspaper code from a data file name:
// "data/ChT.csv" and "out/ChT-extract-all.ndjson" both give "ChT".
func Newspaper(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	paper, _, _ := strings.Cut(base, "-")
	return paper
}

// ReadAds reads ads from a CSV with a header row. The text comes from
// TextColumn; the first column, when it is not the text, is the ad id,
// otherwise the zero-based row number is. nrows > 0 limits the ads read.
func ReadAds(r io.Reader, newspaper string, nrows int) ([]requests.AdInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	textCol := -1
	for i, h := range header {
		if strings.TrimSpace(h) == TextColumn {
			textCol = i
			break
		}
	}
	if textCol < 0 {
		return nil, ErrNoTextColumn
	}

	var ads []requests.AdInput
	for row := 0; nrows <= 0 || row < nrows; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		ad := requests.AdInput{ID: strconv.Itoa(row), Newspaper: newspaper}
		if textCol > 0 && rec[0] != "" {
			ad.ID = rec[0]
		}
		if textCol < len(rec) {
			ad.Text = rec[textCol]
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

// ReadAdsFile opens path and reads it with ReadAds, taking the newspaper
// from the file name.
func ReadAdsFile(path string, nrows int) ([]requests.AdInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAds(f, Newspaper(path), nrows)
}

// Span is the half-open row range [Start, End) of one batch. Checkpoint
// numbers its file: Start plus the batch size, even for a short last batch.
type Span struct {
	Start, End int
	Checkpoint int
}

// Plan splits total rows into batches of size. Batches ending at or before
// skip are already done and left out, so a run can resume from its
// checkpoints.
func Plan(total, size, skip int) []Span {
	if size <= 0 || size > total {
		size = total
	}
	var spans []Span
	for start := 0; start < total; start += size {
		end := start + size
		if end <= skip {
			continue
		}
		sp := Span{Start: start, End: end, Checkpoint: end}
		if sp.End > total {
			sp.End = total
		}
		spans = append(spans, sp)
	}
	return spans
}

// BatchFile names the checkpoint for the batch of the given stage ending at
// row n: "<paper>-<stage>-batch-<n>.ndjson".
func BatchFile(dir, paper, stage string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s-batch-%d.ndjson", paper, stage, n))
}

// OutputFile names a full-run output: "<paper>-<stage>-<n>.<ext>", with
// "all" for n <= 0.
func OutputFile(dir, paper, stage string, n int, ext string) string {
	count := "all"
	if n > 0 {
		count = strconv.Itoa(n)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.%s", paper, stage, count, ext))
}

// WriteNDJSON writes one JSON document per line to path. A ".gz" suffix
// compresses the file.
func WriteNDJSON[T any](path string, items []T) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		w = gz
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return bw.Flush()
}

// ReadNDJSON reads a file written by WriteNDJSON.
func ReadNDJSON[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var items []T
	dec := json.NewDecoder(r)
	for {
		var it T
		err := dec.Decode(&it)
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", path, len(items)+1, err)
		}
		items = append(items, it)
	}
}
