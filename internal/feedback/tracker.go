// Package feedback tracks prediction outcomes. It turns user-confirmed
// actuals into accuracy scores and maintains per-predictor running
// performance aggregates, updated incrementally and never recomputed from
// history.
package feedback

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"material-lca/internal/schema"
	"material-lca/pkg/api"
	lcaerrors "material-lca/pkg/errors"
)

// aggregate is the running Welford state for one predictor. Its own mutex
// serializes writers per predictor name; distinct predictors never contend.
type aggregate struct {
	mu        sync.Mutex
	count     int64
	mean      float64
	m2        float64
	trend     api.Trend
	updatedAt time.Time
}

type fieldStats struct {
	fills     int64
	confirmed int64
	confSum   float64
}

// Tracker owns all ModelPerformance state. No other component mutates it.
type Tracker struct {
	mu   sync.RWMutex
	perf map[string]*aggregate
	seen map[string]struct{}
	gaps map[string]*fieldStats
}

func NewTracker() *Tracker {
	return &Tracker{
		perf: make(map[string]*aggregate),
		seen: make(map[string]struct{}),
		gaps: make(map[string]*fieldStats),
	}
}

// Record ingests one feedback tuple and returns the updated performance
// snapshot. Exact duplicates (same parameter, predicted, actual,
// timestamp) are suppressed so batch replays never double-count. Actuals
// outside the parameter's valid range are rejected before any state
// changes.
func (t *Tracker) Record(parameter string, predicted, actual float64, at time.Time) (api.ModelPerformance, api.PredictionFeedback, error) {
	param, ok := schema.Lookup(parameter)
	if !ok {
		return api.ModelPerformance{}, api.PredictionFeedback{}, &lcaerrors.NotFound{Kind: "parameter", Name: parameter}
	}
	if actual < param.Min || actual > param.Max {
		return api.ModelPerformance{}, api.PredictionFeedback{}, &lcaerrors.InconsistentFeedback{
			Parameter: parameter,
			Actual:    actual,
			Message:   fmt.Sprintf("outside valid range [%v, %v]", param.Min, param.Max),
		}
	}

	accuracy := accuracyScore(param, predicted, actual)
	record := api.PredictionFeedback{
		Parameter: parameter,
		Predicted: predicted,
		Actual:    actual,
		Accuracy:  accuracy,
		CreatedAt: at,
	}

	key := dedupeKey(parameter, predicted, actual, at)

	t.mu.Lock()
	if _, dup := t.seen[key]; dup {
		agg := t.perf[parameter]
		t.mu.Unlock()
		return snapshot(parameter, agg), record, nil
	}
	t.seen[key] = struct{}{}
	agg, exists := t.perf[parameter]
	if !exists {
		agg = &aggregate{trend: api.TrendStable}
		t.perf[parameter] = agg
	}
	if fs, ok := t.gaps[parameter]; ok {
		fs.confirmed++
	}
	t.mu.Unlock()

	agg.mu.Lock()
	agg.trend = trendOf(agg, accuracy)
	agg.count++
	delta := accuracy - agg.mean
	agg.mean += delta / float64(agg.count)
	agg.m2 += delta * (accuracy - agg.mean)
	agg.updatedAt = at
	agg.mu.Unlock()

	return snapshot(parameter, agg), record, nil
}

// Performance returns a point-in-time snapshot for a predictor without
// blocking concurrent writers beyond the copy.
func (t *Tracker) Performance(predictor string) (api.ModelPerformance, error) {
	t.mu.RLock()
	agg, ok := t.perf[predictor]
	t.mu.RUnlock()
	if !ok {
		return api.ModelPerformance{}, &lcaerrors.NotFound{Kind: "predictor", Name: predictor}
	}
	return snapshot(predictor, agg), nil
}

// RecordFill notes that a gap for the parameter was filled with the given
// confidence, feeding the gap statistics read path.
func (t *Tracker) RecordFill(parameter string, conf float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fs, ok := t.gaps[parameter]
	if !ok {
		fs = &fieldStats{}
		t.gaps[parameter] = fs
	}
	fs.fills++
	fs.confSum += conf
}

// Statistics summarizes gap-fill activity across all parameters.
func (t *Tracker) Statistics() api.GapStatistics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := api.GapStatistics{}
	names := make([]string, 0, len(t.gaps))
	for name := range t.gaps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fs := t.gaps[name]
		out.TotalGaps += fs.fills
		out.ConfirmedGaps += fs.confirmed
		avg := 0.0
		if fs.fills > 0 {
			avg = fs.confSum / float64(fs.fills)
		}
		out.FieldPerformance = append(out.FieldPerformance, api.FieldGapStats{
			Parameter:     name,
			Fills:         fs.fills,
			Confirmed:     fs.confirmed,
			AvgConfidence: avg,
		})
	}
	out.PendingGaps = out.TotalGaps - out.ConfirmedGaps
	if out.TotalGaps > 0 {
		out.ConfirmationRate = float64(out.ConfirmedGaps) / float64(out.TotalGaps) * 100
	}
	return out
}

// accuracyScore is 1 minus the normalized deviation between predicted and
// actual: relative to the actual when it is meaningfully non-zero,
// otherwise to the parameter's range width.
func accuracyScore(param schema.Parameter, predicted, actual float64) float64 {
	denom := math.Abs(actual)
	// An actual near the bottom of the parameter's scale would blow the
	// relative deviation up, so the range width takes over as the scale.
	if width := param.RangeWidth(); denom < width*1e-6 {
		denom = width
	}
	if denom == 0 {
		return 0
	}
	score := 1 - math.Abs(predicted-actual)/denom
	if score < 0 {
		return 0
	}
	return score
}

const trendEpsilon = 0.02

// trendOf compares the incoming accuracy against the prior rolling mean.
func trendOf(agg *aggregate, accuracy float64) api.Trend {
	if agg.count == 0 {
		return api.TrendStable
	}
	switch {
	case accuracy > agg.mean+trendEpsilon:
		return api.TrendImproving
	case accuracy < agg.mean-trendEpsilon:
		return api.TrendDeclining
	default:
		return api.TrendStable
	}
}

func snapshot(name string, agg *aggregate) api.ModelPerformance {
	if agg == nil {
		return api.ModelPerformance{Predictor: name, Trend: api.TrendStable}
	}
	agg.mu.Lock()
	defer agg.mu.Unlock()
	variance := 0.0
	if agg.count > 1 {
		variance = agg.m2 / float64(agg.count-1)
	}
	return api.ModelPerformance{
		Predictor:        name,
		SampleCount:      agg.count,
		MeanAccuracy:     agg.mean,
		AccuracyVariance: variance,
		Trend:            agg.trend,
		UpdatedAt:        agg.updatedAt,
	}
}

func dedupeKey(parameter string, predicted, actual float64, at time.Time) string {
	return fmt.Sprintf("%s|%.12g|%.12g|%d", parameter, predicted, actual, at.UnixNano())
}
