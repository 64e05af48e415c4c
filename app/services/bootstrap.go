package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/internal/geo"
	"github.com/classified-extractor/internal/normalizer"
	"github.com/classified-extractor/internal/spell"
)

// LoadReference reads the geographic tables named by cfg. Without a
// newspaper map in cfg the built-in one is used.
func LoadReference(cfg config.ExtractorCfg, logger *zap.Logger) (*geo.Reference, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	papers := cfg.Newspapers
	if len(papers) == 0 {
		papers = geo.DefaultNewspapers()
	}
	ref, err := geo.LoadReference(cfg.ReferenceDir, papers)
	if err != nil {
		return nil, fmt.Errorf("load reference from %s: %w", cfg.ReferenceDir, err)
	}
	logger.Info("reference loaded",
		zap.String("dir", cfg.ReferenceDir),
		zap.String("version", ref.Version()),
		zap.Int("newspapers", len(ref.Newspapers())))
	return ref, nil
}

// BuildNormalizer loads the lexicon and, when cfg names one, the frequency
// dictionary used for word checks and compound correction.
func BuildNormalizer(cfg config.ExtractorCfg, logger *zap.Logger) (*normalizer.TextNormalizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lx, err := normalizer.LoadLexicon()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	if cfg.DictionaryPath == "" {
		logger.Warn("no dictionary configured, spell correction disabled")
		return normalizer.NewTextNormalizer(lx, nil, nil, cfg.MaxEditDistance, logger), nil
	}

	dict, err := spell.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	corrector, err := spell.NewCorrector(dict, cfg.CorrectorMemo)
	if err != nil {
		return nil, err
	}
	logger.Info("dictionary loaded", zap.String("path", cfg.DictionaryPath), zap.Int("words", dict.Len()))
	return normalizer.NewTextNormalizer(lx, dict, corrector, cfg.MaxEditDistance, logger), nil
}
