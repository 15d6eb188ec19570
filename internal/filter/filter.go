// Package filter screens chat messages before they reach intent
// classification and the completion provider.
package filter

import (
	"context"

	"github.com/kannou1/PFE/internal/types"
)

// Action is what a filter decided about a message.
type Action string

const (
	ActionPass   Action = "pass"
	ActionFlag   Action = "flag"
	ActionRedact Action = "redact"
	ActionBlock  Action = "block"
)

// Result is one filter's decision.
type Result struct {
	Action     Action
	FilterName string
	Message    string
	Detections int
	Score      float64
}

// Filter screens a chat request. A filter returning ActionRedact has already
// rewritten req.Message.
type Filter interface {
	Name() string
	Enabled() bool
	ScanRequest(ctx context.Context, req *types.ChatRequest) Result
}

// Verdict is the outcome of running a message through a Chain.
type Verdict struct {
	Results []Result
	// Blocked is the first blocking result, nil when the message may go on.
	Blocked *Result
}

// Redacted reports whether a filter rewrote the message.
func (v Verdict) Redacted() bool {
	for _, r := range v.Results {
		if r.Action == ActionRedact {
			return true
		}
	}
	return false
}

// Acted returns the results of the filters that did not pass the message.
func (v Verdict) Acted() []Result {
	var out []Result
	for _, r := range v.Results {
		if r.Action != ActionPass {
			out = append(out, r)
		}
	}
	return out
}

// Chain runs filters in order and stops at the first block. Redactions are
// applied in place, so later filters see the redacted message.
type Chain struct {
	filters []Filter
}

func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Run screens req with every enabled filter. A nil chain passes everything.
func (c *Chain) Run(ctx context.Context, req *types.ChatRequest) Verdict {
	var v Verdict
	if c == nil {
		return v
	}
	for _, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		r := f.ScanRequest(ctx, req)
		v.Results = append(v.Results, r)
		if r.Action == ActionBlock {
			v.Blocked = &v.Results[len(v.Results)-1]
			return v
		}
	}
	return v
}
