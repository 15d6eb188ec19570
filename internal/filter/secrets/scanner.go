package secrets

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/filter"
	"github.com/kannou1/PFE/internal/types"
)

// Detection represents a detected secret in text.
type Detection struct {
	PatternName string // e.g. "AWS Access Key"
	Start       int    // byte offset
	End         int    // byte offset
}

// Scanner scans text for secrets using pre-compiled regex patterns.
type Scanner struct {
	patterns []Pattern
	cfg      func() config.SecretsFilterConfig
}

// NewScanner creates a scanner with the default secret patterns.
func NewScanner(cfg func() config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "secrets" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan checks a single text string for secrets and returns all detections.
func (s *Scanner) Scan(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

// Redact replaces every detected secret with a placeholder naming its kind.
// Overlapping matches collapse into the earliest one.
func (s *Scanner) Redact(text string) (string, []Detection) {
	detections := s.Scan(text)
	if len(detections) == 0 {
		return text, nil
	}
	spans := slices.Clone(detections)
	slices.SortFunc(spans, func(a, b Detection) int { return a.Start - b.Start })

	var sb strings.Builder
	pos := 0
	for _, d := range spans {
		if d.Start < pos {
			pos = max(pos, d.End)
			continue
		}
		sb.WriteString(text[pos:d.Start])
		fmt.Fprintf(&sb, "[REDACTED %s]", d.PatternName)
		pos = d.End
	}
	sb.WriteString(text[pos:])
	return sb.String(), detections
}

// ScanRequest implements filter.Filter. Secrets are redacted from the message
// rather than blocking it.
func (s *Scanner) ScanRequest(_ context.Context, req *types.ChatRequest) filter.Result {
	redacted, detections := s.Redact(req.Message)
	if len(detections) == 0 {
		return filter.Result{Action: filter.ActionPass, FilterName: "secrets"}
	}
	req.Message = redacted
	return filter.Result{
		Action:     filter.ActionRedact,
		FilterName: "secrets",
		Message:    fmt.Sprintf("%d secret(s) redacted", len(detections)),
		Detections: len(detections),
	}
}
