// Package spell provides the word list used to recognise real words in OCR
// output and a compound corrector built on it.
package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dictionary is a frequency word list. It is immutable after construction.
type Dictionary struct {
	freq  map[string]int64
	byLen map[int][]string
}

// NewDictionary builds a dictionary from word frequencies.
func NewDictionary(entries map[string]int64) *Dictionary {
	d := &Dictionary{
		freq:  make(map[string]int64, len(entries)),
		byLen: make(map[int][]string),
	}
	for w, f := range entries {
		if w == "" {
			continue
		}
		if f <= 0 {
			f = 1
		}
		d.freq[w] = f
	}
	for w := range d.freq {
		n := len([]rune(w))
		d.byLen[n] = append(d.byLen[n], w)
	}
	for _, words := range d.byLen {
		sort.Slice(words, func(i, j int) bool {
			fi, fj := d.freq[words[i]], d.freq[words[j]]
			if fi != fj {
				return fi > fj
			}
			return words[i] < words[j]
		})
	}
	return d
}

// NewDictionaryFromWords builds a dictionary where every word has frequency 1.
func NewDictionaryFromWords(words ...string) *Dictionary {
	m := make(map[string]int64, len(words))
	for _, w := range words {
		m[w]++
	}
	return NewDictionary(m)
}

// ReadDictionary parses "word count" lines (space or tab separated). A missing
// count means 1; blank lines are skipped.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	entries := make(map[string]int64)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var count int64 = 1
		if len(fields) > 1 {
			c, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("dictionary line %d: bad count %q: %w", line, fields[1], err)
			}
			count = c
		}
		entries[fields[0]] += count
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return NewDictionary(entries), nil
}

// LoadDictionary reads a dictionary file from disk.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return ReadDictionary(f)
}

// IsKnownWord reports whether the lowercase or title-case form of word is
// listed.
func (d *Dictionary) IsKnownWord(word string) bool {
	if word == "" {
		return false
	}
	if _, ok := d.freq[strings.ToLower(word)]; ok {
		return true
	}
	_, ok := d.freq[cases.Title(language.English).String(word)]
	return ok
}

// Frequency returns the count of an exact entry, or 0.
func (d *Dictionary) Frequency(word string) int64 {
	return d.freq[word]
}

// Len is the number of distinct entries.
func (d *Dictionary) Len() int {
	return len(d.freq)
}

// wordsOfLength returns entries with n runes, most frequent first.
func (d *Dictionary) wordsOfLength(n int) []string {
	return d.byLen[n]
}
