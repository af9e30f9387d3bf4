// Package stage describes the progressive delivery protocol records.
package stage

import (
	"time"

	"github.com/kailas-cloud/talentsearch/internal/domain/search/result"
)

// Stage names a refinement step.
type Stage string

// Stages in delivery order.
const (
	Instant     Stage = "instant"
	Enhanced    Stage = "enhanced"
	Intelligent Stage = "intelligent"
)

// Total is the number of stages every completed search yields.
const Total = 3

// Number returns the 1-based position of the stage, or 0 for unknown values.
func (s Stage) Number() int {
	switch s {
	case Instant:
		return 1
	case Enhanced:
		return 2
	case Intelligent:
		return 3
	}
	return 0
}

// Degraded records which capabilities were missing while a stage ran.
type Degraded struct {
	VectorUnavailable      bool
	EnhancementUnavailable bool
	Partial                bool
}

// Any reports whether any degradation happened.
func (d Degraded) Any() bool {
	return d.VectorUnavailable || d.EnhancementUnavailable || d.Partial
}

// Result is one record of the progressive stream.
type Result struct {
	SearchID     string
	Stage        Stage
	Results      []result.Candidate
	Elapsed      time.Duration
	IsFinal      bool
	QualityScore *float64
	CacheHit     bool
	Degraded     Degraded
}

// Number returns the 1-based stage position.
func (r Result) Number() int { return r.Stage.Number() }
