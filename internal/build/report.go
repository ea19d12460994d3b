package build

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Pass names a build stage. Every pass except PassMaster owns a namespace
// directory.
type Pass string

const (
	PassMaster   Pass = "master"
	PassPages    Pass = "pages"
	PassIndex    Pass = "index"
	PassListings Pass = "listings"
)

// AllPasses is the order used by the all, watch and daemon commands.
func AllPasses() []Pass { return []Pass{PassMaster, PassPages, PassIndex, PassListings} }

// PassReport captures the result of one pass.
type PassReport struct {
	Pass Pass
	Dir  string
	// Produced lists every file the pass owns after this build.
	Produced []string
	// Changed counts files whose content was actually rewritten.
	Changed int
	Pruned  []string
	Failed  []string
	Skipped []string
	Issues  []error
	// Err is the fatal error that stopped the pass, if any.
	Err      error
	Duration time.Duration
}

// Warnings counts non-fatal problems of the pass.
func (p *PassReport) Warnings() int { return len(p.Issues) + len(p.Failed) + len(p.Skipped) }

// Report captures a complete build.
type Report struct {
	BuildID  string
	Start    time.Time
	End      time.Time
	Passes   []*PassReport
	Outcome  Outcome
	Err      error
	Warnings []error // sink failures and other problems outside any pass
}

// Duration of the whole build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Pass returns the report for p, or nil when it did not run.
func (r *Report) Pass(p Pass) *PassReport {
	for _, pr := range r.Passes {
		if pr.Pass == p {
			return pr
		}
	}
	return nil
}

func (r *Report) deriveOutcome(canceled bool) {
	switch {
	case canceled:
		r.Outcome = OutcomeCanceled
	case r.Err != nil:
		r.Outcome = OutcomeFailed
	default:
		r.Outcome = OutcomeSuccess
		for _, p := range r.Passes {
			if p.Warnings() > 0 {
				r.Outcome = OutcomeWarning
				break
			}
		}
	}
}

// Summary renders a short human-readable description of the build.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %s %s in %s", r.BuildID, r.Outcome, r.Duration().Round(time.Millisecond))
	for _, p := range r.Passes {
		fmt.Fprintf(&b, "\n  %-8s produced=%d changed=%d pruned=%d warnings=%d",
			p.Pass, len(p.Produced), p.Changed, len(p.Pruned), p.Warnings())
		if p.Dir != "" {
			fmt.Fprintf(&b, " dir=%s", p.Dir)
		}
		if p.Err != nil {
			fmt.Fprintf(&b, " error=%v", p.Err)
		}
	}
	return b.String()
}
