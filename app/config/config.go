// Package config holds the extraction thresholds. Service runtime settings
// (ports, cache backends) live in viper config read by cmd/api.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AddressCfg tunes the address pass.
type AddressCfg struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	AdDelimiter        string `yaml:"ad_delimiter" json:"ad_delimiter"`
	ExcludeRealEstate  bool   `yaml:"exclude_real_estate" json:"exclude_real_estate"`
	MinTokenLength     int    `yaml:"min_token_length" json:"min_token_length"`
	CityThreshold      int    `yaml:"city_threshold" json:"city_threshold"`
	StateNameThreshold int    `yaml:"state_name_threshold" json:"state_name_threshold"`
	StateIDThreshold   int    `yaml:"state_id_threshold" json:"state_id_threshold"`
}

// WageCfg tunes the wage pass.
type WageCfg struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	AdDelimiter string `yaml:"ad_delimiter" json:"ad_delimiter"`
	Sandbox     bool   `yaml:"sandbox" json:"sandbox"`
}

// ExtractorCfg is the full extraction configuration.
type ExtractorCfg struct {
	ReferenceDir    string            `yaml:"reference_dir" json:"reference_dir"`
	DictionaryPath  string            `yaml:"dictionary_path" json:"dictionary_path"`
	MinPopulation   int64             `yaml:"min_population" json:"min_population"`
	MaxEditDistance int               `yaml:"max_edit_distance" json:"max_edit_distance"`
	CorrectorMemo   int               `yaml:"corrector_memo" json:"corrector_memo"`
	Workers         int               `yaml:"workers" json:"workers"`
	Newspapers      map[string]string `yaml:"newspapers" json:"newspapers"`
	Address         AddressCfg        `yaml:"address" json:"address"`
	Wage            WageCfg           `yaml:"wage" json:"wage"`
}

// Default returns the constants the heuristics were tuned with.
func Default() ExtractorCfg {
	return ExtractorCfg{
		ReferenceDir:    "data/geo",
		MinPopulation:   50000,
		MaxEditDistance: 2,
		CorrectorMemo:   10000,
		Workers:         4,
		Address: AddressCfg{
			Enabled:            true,
			ExcludeRealEstate:  true,
			MinTokenLength:     3,
			CityThreshold:      70,
			StateNameThreshold: 80,
			StateIDThreshold:   90,
		},
		Wage: WageCfg{Enabled: true},
	}
}

// Load reads path over Default and applies environment overrides.
func Load(path string) (ExtractorCfg, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read extractor config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse extractor config %s: %w", path, err)
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// LoadOrDefault is Load, falling back to Default plus environment when path
// does not exist.
func LoadOrDefault(path string) (ExtractorCfg, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := Default()
		if err := c.applyEnv(); err != nil {
			return c, err
		}
		return c, c.Validate()
	}
	return Load(path)
}

func (c *ExtractorCfg) applyEnv() error {
	if v := os.Getenv("EXTRACTOR_MIN_POP"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("EXTRACTOR_MIN_POP: %w", err)
		}
		c.MinPopulation = n
	}
	if v := os.Getenv("EXTRACTOR_CITY_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXTRACTOR_CITY_THRESHOLD: %w", err)
		}
		c.Address.CityThreshold = n
	}
	if v := os.Getenv("EXTRACTOR_REFERENCE_DIR"); v != "" {
		c.ReferenceDir = v
	}
	return nil
}

// Validate checks ranges.
func (c ExtractorCfg) Validate() error {
	for name, t := range map[string]int{
		"city_threshold":       c.Address.CityThreshold,
		"state_name_threshold": c.Address.StateNameThreshold,
		"state_id_threshold":   c.Address.StateIDThreshold,
	} {
		if t < 0 || t > 100 {
			return fmt.Errorf("%s must be within 0..100, got %d", name, t)
		}
	}
	if c.MinPopulation < 0 {
		return fmt.Errorf("min_population must not be negative")
	}
	if c.MaxEditDistance < 0 {
		return fmt.Errorf("max_edit_distance must not be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
