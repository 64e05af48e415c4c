package wage

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/classified-extractor/internal/normalizer"
)

// DefaultAdDelimiter separates ads in one OCR blob.
const DefaultAdDelimiter = "_classifiedad_"

// Candidate is one wage reading of an ad.
type Candidate struct {
	Text  string `json:"text"`
	Tier  Tier   `json:"tier"`
	Token int    `json:"token"`
}

// Result is the wage output for one ad. Wage is nil when nothing was found
// or when the ad was excluded as real estate; Excluded tells the two apart.
type Result struct {
	Wage       *string     `json:"wage"`
	Excluded   bool        `json:"excluded"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// ByTier returns the candidate texts of tier t in scan order.
func (r Result) ByTier(t Tier) []string {
	var out []string
	for _, c := range r.Candidates {
		if c.Tier == t {
			out = append(out, c.Text)
		}
	}
	return out
}

// Ranker extracts wages. It keeps no per-ad state and is safe for
// concurrent use.
type Ranker struct {
	normalizer *normalizer.TextNormalizer
	delimiter  string
	logger     *zap.Logger
}

// NewRanker creates a Ranker. An empty adDelimiter means DefaultAdDelimiter.
func NewRanker(tn *normalizer.TextNormalizer, adDelimiter string, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adDelimiter == "" {
		adDelimiter = DefaultAdDelimiter
	}
	return &Ranker{normalizer: tn, delimiter: adDelimiter, logger: logger}
}

var (
	reSalary = regexp.MustCompile(`^\$?\d+\.?\d{1,2}?\$?[-\s]`)
	rePhone  = regexp.MustCompile(`\d{0,3}-?\s?\d{3}-?\s?\d{4}`)
)

// PotentialSalary reports whether word looks like an amount of money: digits
// with an optional $ and decimals, not starting with 0 and not shaped like a
// phone number.
func PotentialSalary(word string) bool {
	if !reSalary.MatchString(word + " ") {
		return false
	}
	if d := normalizer.DigitsOnly(word); d == "" || d[0] == '0' {
		return false
	}
	return !rePhone.MatchString(word)
}

// ExtractWage returns the wage offered by the first ad of adText.
func (r *Ranker) ExtractWage(adText string) Result {
	if adText == "" {
		return Result{}
	}
	text := normalizer.FirstAd(adText, r.delimiter)
	lx := r.normalizer.Lexicon()
	if lx.IsRealEstate(text) && !lx.HasLaborOverride(text) {
		return Result{Excluded: true}
	}

	tokens := strings.Fields(r.normalizer.CleanForWage(text))
	var res Result
	for idx, word := range tokens {
		if !PotentialSalary(word) {
			continue
		}
		s := scan{tokens: tokens, idx: idx, dollar: strings.Contains(word, "$")}
		var slots tierSlots
		s.forward(lx, &slots)
		s.backward(lx, &slots)
		if s.dollar {
			slots.offer(Weak, word)
		}
		for t := Best; t >= Weak; t-- {
			if slots[t] != "" {
				res.Candidates = append(res.Candidates, Candidate{Text: slots[t], Tier: t, Token: idx})
			}
		}
	}

	options := res.ByTier(Best)
	if len(options) == 0 {
		options = res.ByTier(Potential)
	}
	if w, ok := r.choose(options); ok {
		res.Wage = &w
	}
	r.logger.Debug("wage scanned",
		zap.Int("tokens", len(tokens)),
		zap.Int("candidates", len(res.Candidates)),
		zap.Bool("found", res.Wage != nil))
	return res
}

// choose picks the winner among same-tier options: shortest first, options
// contained in a longer one dropped, then the first that names a rate.
func (r *Ranker) choose(options []string) (string, bool) {
	if len(options) == 0 {
		return "", false
	}
	if len(options) == 1 {
		return options[0], true
	}

	sorted := append([]string(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) < len(sorted[j]) })

	var kept []string
	for i, opt := range sorted {
		dominated := false
		for _, later := range sorted[i+1:] {
			if strings.Contains(later, opt) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, opt)
		}
	}

	for _, opt := range kept {
		for _, rate := range r.normalizer.Lexicon().RatePhrases {
			if strings.Contains(opt, rate) {
				return opt, true
			}
		}
	}
	return kept[0], true
}
