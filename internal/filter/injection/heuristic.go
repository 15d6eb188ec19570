package injection

import (
	"context"
	"fmt"

	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/filter"
	"github.com/kannou1/PFE/internal/types"
)

// Detection records a matched injection pattern.
type Detection struct {
	RuleName string
	Severity float64
	Category string
	Start    int
	End      int
}

// Scanner scans text for prompt injection patterns.
type Scanner struct {
	rules []Rule
	cfg   func() config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg func() config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan checks a single text string and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, r := range s.rules {
		locs := r.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
				Start:    loc[0],
				End:      loc[1],
			})
		}
	}
	return detections
}

// Score returns the detections in text and their max severity.
func (s *Scanner) Score(text string) ([]Detection, float64) {
	detections := s.Scan(text)
	maxScore := 0.0
	for _, d := range detections {
		maxScore = max(maxScore, d.Severity)
	}
	return detections, maxScore
}

// ScanRequest implements filter.Filter.
func (s *Scanner) ScanRequest(_ context.Context, req *types.ChatRequest) filter.Result {
	detections, score := s.Score(req.Message)
	cfg := s.cfg()

	if score >= cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "injection",
			Message:    fmt.Sprintf("Request blocked: prompt injection detected (score %.2f)", score),
			Detections: len(detections),
			Score:      score,
		}
	}
	if score >= cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: "injection",
			Detections: len(detections),
			Score:      score,
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: "injection", Score: score}
}
