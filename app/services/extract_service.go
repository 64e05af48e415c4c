package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/app/requests"
	"github.com/classified-extractor/app/responses"
	"github.com/classified-extractor/helpers/utils"
	"github.com/classified-extractor/internal/geo"
	"github.com/classified-extractor/internal/normalizer"
	"github.com/classified-extractor/internal/parser"
	"github.com/classified-extractor/internal/wage"
)

var (
	// ErrJobNotFound is returned for an unknown job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotReady is returned when results of a running job are requested.
	ErrJobNotReady = errors.New("job not finished")
)

// Engine is the extraction machinery of one newspaper.
type Engine struct {
	Context *geo.Context
	Address *parser.AddressCandidateBuilder
	Wage    *wage.Ranker
}

// Job is a background batch extraction.
type Job struct {
	ID        string
	Status    string
	Total     int
	Processed int
	Failed    int
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time

	results []*models.AdResult
}

// Progress is the processed fraction in [0, 1].
func (j Job) Progress() float64 {
	if j.Total == 0 {
		return 1
	}
	return float64(j.Processed) / float64(j.Total)
}

// passes is ExtractOptions resolved against the configured defaults.
type passes struct {
	address bool
	wage    bool
	sandbox bool
	cache   bool
}

func (p passes) key() string {
	return strconv.FormatBool(p.address) + strconv.FormatBool(p.wage) + strconv.FormatBool(p.sandbox)
}

// ExtractService runs address and wage extraction for every newspaper of
// the reference tables. Engines are built once and shared by all requests.
type ExtractService struct {
	ref     *geo.Reference
	engines map[string]*Engine
	cache   ICacheService
	cfg     config.ExtractorCfg
	logger  *zap.Logger

	startTime time.Time
	extracted atomic.Int64

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewExtractService builds one engine per newspaper known to ref. cache may
// be nil to disable caching.
func NewExtractService(ref *geo.Reference, tn *normalizer.TextNormalizer, cfg config.ExtractorCfg, cache ICacheService, logger *zap.Logger) (*ExtractService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := parser.Options{
		AdDelimiter:        cfg.Address.AdDelimiter,
		ExcludeRealEstate:  cfg.Address.ExcludeRealEstate,
		MinTokenLength:     cfg.Address.MinTokenLength,
		CityThreshold:      cfg.Address.CityThreshold,
		StateNameThreshold: cfg.Address.StateNameThreshold,
		StateIDThreshold:   cfg.Address.StateIDThreshold,
	}

	engines := make(map[string]*Engine)
	for _, paper := range ref.Newspapers() {
		ctx, err := ref.ForNewspaper(paper, cfg.MinPopulation)
		if err != nil {
			return nil, fmt.Errorf("build context for %s: %w", paper, err)
		}
		engines[paper] = &Engine{
			Context: ctx,
			Address: parser.NewAddressCandidateBuilder(ctx, tn, opts, logger),
			Wage:    wage.NewRanker(tn, cfg.Wage.AdDelimiter, logger.With(zap.String("newspaper", paper))),
		}
		logger.Debug("engine ready",
			zap.String("newspaper", paper),
			zap.String("state", ctx.StateID),
			zap.Int("big_cities", len(ctx.BigCities)))
	}

	return &ExtractService{
		ref:       ref,
		engines:   engines,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
		jobs:      make(map[string]*Job),
	}, nil
}

// ReferenceVersion identifies the loaded reference tables.
func (s *ExtractService) ReferenceVersion() string { return s.ref.Version() }

// Engine returns the engine of newspaper.
func (s *ExtractService) Engine(newspaper string) (*Engine, error) {
	e, ok := s.engines[newspaper]
	if !ok {
		return nil, fmt.Errorf("%w: %s", geo.ErrUnknownNewspaper, newspaper)
	}
	return e, nil
}

// Newspapers describes the supported newspapers, sorted by code.
func (s *ExtractService) Newspapers() []responses.NewspaperInfo {
	out := make([]responses.NewspaperInfo, 0, len(s.engines))
	for _, paper := range s.ref.Newspapers() {
		c := s.engines[paper].Context
		out = append(out, responses.NewspaperInfo{
			Code:         paper,
			StateID:      c.StateID,
			StateName:    c.StateName,
			NearbyStates: c.NearbyStates,
			BigCities:    len(c.BigCities),
		})
	}
	return out
}

func (s *ExtractService) resolve(o requests.ExtractOptions) passes {
	p := passes{
		address: s.cfg.Address.Enabled,
		wage:    s.cfg.Wage.Enabled,
		sandbox: s.cfg.Wage.Sandbox,
		cache:   s.cache != nil,
	}
	if o.ExtractAddress != nil {
		p.address = *o.ExtractAddress
	}
	if o.ExtractWage != nil {
		p.wage = *o.ExtractWage
	}
	if o.Sandbox != nil {
		p.sandbox = *o.Sandbox
	}
	if o.UseCache != nil {
		p.cache = p.cache && *o.UseCache
	}
	return p
}

// Extract runs the selected passes over one ad. The bool reports a cache
// hit. Cache failures are logged and never fail the extraction.
func (s *ExtractService) Extract(ctx context.Context, ad requests.AdInput, opts requests.ExtractOptions) (*models.AdResult, bool, error) {
	engine, err := s.Engine(ad.Newspaper)
	if err != nil {
		return nil, false, err
	}
	p := s.resolve(opts)
	key := utils.Fingerprint(ad.Newspaper, p.key(), ad.Text)

	if p.cache {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		case ok && cached.ReferenceVersion == s.ref.Version():
			hit := *cached
			hit.ID = ad.ID
			return &hit, true, nil
		}
	}

	result := s.run(engine, ad, p)
	result.Fingerprint = key
	s.extracted.Add(1)

	if p.cache {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, false, nil
}

func (s *ExtractService) run(e *Engine, ad requests.AdInput, p passes) *models.AdResult {
	result := &models.AdResult{
		ID:               ad.ID,
		Newspaper:        ad.Newspaper,
		Addresses:        []models.AddressCandidate{},
		ReferenceVersion: s.ref.Version(),
	}

	if p.address {
		ext := e.Address.Extract(ad.Text)
		result.Addresses = append(result.Addresses, ext.Candidates...)
		result.AddressExcluded = ext.Excluded
		if ext.Err != nil {
			result.AddressError = ext.Err.Error()
			s.logger.Warn("address pass stopped",
				zap.String("ad", ad.ID),
				zap.String("newspaper", ad.Newspaper),
				zap.Error(ext.Err))
		}
	}

	if p.wage {
		w := e.Wage.ExtractWage(ad.Text)
		result.Wage = w.Wage
		result.WageExcluded = w.Excluded
		if p.sandbox {
			result.Sandbox = &models.WageSandbox{
				Strong: w.ByTier(wage.Best),
				Maybe:  w.ByTier(wage.Potential),
				Weak:   w.ByTier(wage.Weak),
			}
		}
	}

	result.ResolveStatus()
	return result
}

// ExtractAll extracts ads with at most workers concurrent extractions and
// returns results in input order. onDone, when set, is called after each ad.
// An ad that fails (unknown newspaper) yields a nil slot and is counted in
// the returned failure total; ctx cancellation aborts the whole run.
func (s *ExtractService) ExtractAll(ctx context.Context, ads []requests.AdInput, opts requests.ExtractOptions, workers int, onDone func(failed bool)) ([]*models.AdResult, int, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*models.AdResult, len(ads))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ads {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, _, err := s.Extract(gctx, ads[i], opts)
			if err != nil {
				failed.Add(1)
				s.logger.Warn("ad skipped", zap.Int("index", i), zap.String("ad", ads[i].ID), zap.Error(err))
			}
			results[i] = res
			if onDone != nil {
				onDone(err != nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, int(failed.Load()), err
	}
	return results, int(failed.Load()), nil
}

// SubmitBatch validates the ads and starts a background job. Ads without a
// newspaper take req.Newspaper.
func (s *ExtractService) SubmitBatch(ctx context.Context, req requests.BatchExtractRequest) (string, error) {
	ads := make([]requests.AdInput, len(req.Ads))
	for i, ad := range req.Ads {
		if ad.Newspaper == "" {
			ad.Newspaper = req.Newspaper
		}
		if _, err := s.Engine(ad.Newspaper); err != nil {
			return "", fmt.Errorf("ad %d: %w", i, err)
		}
		if ad.ID == "" {
			ad.ID = strconv.Itoa(i)
		}
		ads[i] = ad
	}

	now := time.Now()
	job := &Job{
		ID:        utils.GenerateUUID(),
		Status:    responses.JobStatusPending,
		Total:     len(ads),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runJob(context.WithoutCancel(ctx), job.ID, ads, req.Options)
	return job.ID, nil
}

func (s *ExtractService) runJob(ctx context.Context, jobID string, ads []requests.AdInput, opts requests.ExtractOptions) {
	s.updateJob(jobID, func(j *Job) { j.Status = responses.JobStatusRunning })
	start := time.Now()

	results, failed, err := s.ExtractAll(ctx, ads, opts, s.cfg.Workers, func(adFailed bool) {
		s.updateJob(jobID, func(j *Job) {
			j.Processed++
			if adFailed {
				j.Failed++
			}
		})
	})

	kept := results[:0]
	for _, r := range results {
		if r != nil {
			kept = append(kept, r)
		}
	}

	s.updateJob(jobID, func(j *Job) {
		j.results = kept
		if err != nil {
			j.Status = responses.JobStatusFailed
			j.Message = err.Error()
			return
		}
		j.Status = responses.JobStatusDone
		j.Message = fmt.Sprintf("extracted %d ads, %d failed", len(kept), failed)
	})
	s.logger.Info("batch job finished",
		zap.String("job_id", jobID),
		zap.Int("total", len(ads)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
}

func (s *ExtractService) updateJob(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
		j.UpdatedAt = time.Now()
	}
}

// JobStatus returns a snapshot of a job.
func (s *ExtractService) JobStatus(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	snapshot := *j
	snapshot.results = nil
	return snapshot, nil
}

// JobResults returns the results of a finished job in input order.
func (s *ExtractService) JobResults(id string) ([]*models.AdResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if j.Status != responses.JobStatusDone && j.Status != responses.JobStatusFailed {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobNotReady, id, j.Status)
	}
	return j.results, nil
}

// JobResultsStream yields the results of a finished job on a channel that is
// closed after the last one or when ctx is done.
func (s *ExtractService) JobResultsStream(ctx context.Context, id string) (<-chan *models.AdResult, error) {
	results, err := s.JobResults(id)
	if err != nil {
		return nil, err
	}
	ch := make(chan *models.AdResult, 100)
	go func() {
		defer close(ch)
		for _, r := range results {
			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// JobCounts returns the number of jobs and how many are still running.
func (s *ExtractService) JobCounts() (total, running int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.Status == responses.JobStatusPending || j.Status == responses.JobStatusRunning {
			running++
		}
	}
	return len(s.jobs), running
}

// JobIDs lists job ids, oldest first.
func (s *ExtractService) JobIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool {
		return s.jobs[ids[i]].CreatedAt.Before(s.jobs[ids[k]].CreatedAt)
	})
	return ids
}

// Extracted is the number of ads extracted without a cache hit.
func (s *ExtractService) Extracted() int64 { return s.extracted.Load() }

// StartTime is when the service was built.
func (s *ExtractService) StartTime() time.Time { return s.startTime }

// Cache returns the cache backend, possibly nil.
func (s *ExtractService) Cache() ICacheService { return s.cache }
