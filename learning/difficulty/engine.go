// Package difficulty implements the adaptive difficulty engine: initial
// difficulty estimation, per-response adjustment, and question selection
// under cooldown and discrimination constraints.
package difficulty

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

const (
	// DefaultDifficulty is the population default for users with no history.
	DefaultDifficulty = 50.0

	// recentWindow is how many recent responses seed the initial estimate.
	recentWindow = 10

	// selectionBand is the half-width of the candidate difficulty band.
	selectionBand = 10.0

	// cooldownDays excludes recently answered questions from selection.
	cooldownDays = 14

	// DiscriminationFloor marks questions that separate performers poorly.
	DiscriminationFloor = 0.2

	// minDiscriminationResponses gates the discrimination computation.
	minDiscriminationResponses = 20

	// correctThreshold is the score above which a response counts as correct.
	correctThreshold = 0.7

	// jitterBound bounds the random perturbation applied to interior scores.
	jitterBound = 5
)

// Complexity is the coarse three-tier difficulty bucket used by content
// generation.
type Complexity string

const (
	ComplexityBasic        Complexity = "BASIC"
	ComplexityIntermediate Complexity = "INTERMEDIATE"
	ComplexityAdvanced     Complexity = "ADVANCED"
)

// Adjustment is the result of one difficulty update.
type Adjustment struct {
	NewDifficulty float64
	Delta         float64
	Explanation   string
}

// JitterSource returns a perturbation in [-bound, bound]. Injected so
// tests can supply a deterministic source.
type JitterSource func(bound int) int

func defaultJitter(bound int) int {
	return rand.Intn(2*bound+1) - bound
}

// Engine computes and adjusts difficulty. It is stateless and safe for
// concurrent use; concurrent usage-counter updates may race, which is
// acceptable for a soft prioritization signal.
type Engine struct {
	responses store.ResponseStore
	questions store.QuestionStore
	jitter    JitterSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine creates an engine. A nil jitter selects the default random
// source.
func NewEngine(responses store.ResponseStore, questions store.QuestionStore, jitter JitterSource, logger *slog.Logger) *Engine {
	if jitter == nil {
		jitter = defaultJitter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		responses: responses,
		questions: questions,
		jitter:    jitter,
		logger:    logger,
		now:       time.Now,
	}
}

// CalculateInitialDifficulty estimates a starting difficulty from the
// user's most recent scored responses, recency-weighted. With no history
// it returns the population default. The primary read failure
// propagates; a silently wrong difficulty is worse than an error.
func (e *Engine) CalculateInitialDifficulty(ctx context.Context, userID int32, objectiveID string) (float64, error) {
	responses, err := e.responses.ListRecentResponses(ctx, userID, objectiveID, recentWindow)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read recent responses")
	}
	if len(responses) == 0 {
		return DefaultDifficulty, nil
	}

	// Weight decays linearly from 1.0 at the most recent response to 0.5
	// at the oldest in-window entry.
	var weightedSum, weightTotal float64
	n := len(responses)
	for i, response := range responses {
		weight := 1.0
		if n > 1 {
			weight = 1.0 - 0.5*float64(i)/float64(n-1)
		}
		weightedSum += weight * response.Score
		weightTotal += weight
	}
	average := weightedSum / weightTotal * 100

	difficulty := average
	switch {
	case average >= 90:
		difficulty += 10
	case average < 70:
		difficulty -= 10
	}
	return clamp(difficulty, 0, 100), nil
}

// AdjustDifficulty updates difficulty after one scored response. Scores
// above 80 push difficulty up, below 60 pull it down; the exact boundary
// values hold steady, and interior scores get a small random
// perturbation to avoid monotony.
func (e *Engine) AdjustDifficulty(score, current float64) Adjustment {
	var delta float64
	var reason string
	switch {
	case score == 60 || score == 80:
		delta, reason = 0, fmt.Sprintf("score %.0f is at an adjustment boundary, difficulty unchanged", score)
	case score > 80:
		delta, reason = 15, fmt.Sprintf("score %.0f above 80, raising difficulty", score)
	case score < 60:
		delta, reason = -15, fmt.Sprintf("score %.0f below 60, lowering difficulty", score)
	default:
		delta = float64(e.jitter(jitterBound))
		reason = fmt.Sprintf("score %.0f in the stable band, applying jitter of %+.0f", score, delta)
	}

	updated := clamp(current+delta, 0, 100)
	if updated != current+delta {
		reason += fmt.Sprintf(" (clamped to %.0f)", updated)
	}
	return Adjustment{
		NewDifficulty: updated,
		Delta:         delta,
		Explanation:   reason,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SelectQuestion picks the best candidate near the target difficulty:
// within ±10 of the target (intersected with the complexity tier),
// outside the user's 14-day answer cooldown, with poorly discriminating
// questions excluded and never-measured ones retained. A nil result
// means no candidate exists and the caller should generate a fresh
// question; that is not an error.
func (e *Engine) SelectQuestion(ctx context.Context, target float64, complexity Complexity, userID int32, objectiveID string) (*store.QuestionRecord, error) {
	since := e.now().AddDate(0, 0, -cooldownDays)
	excluded, err := e.responses.ListAnsweredQuestionIDs(ctx, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read answer cooldown set")
	}

	minDifficulty, maxDifficulty := clamp(target-selectionBand, 0, 100), clamp(target+selectionBand, 0, 100)
	if lo, hi, ok := DifficultyRangeForComplexity(complexity); ok {
		minDifficulty = math.Max(minDifficulty, lo)
		maxDifficulty = math.Min(maxDifficulty, hi)
	}

	candidates, err := e.questions.ListCandidateQuestions(ctx, &store.CandidateFilter{
		ObjectiveID:         objectiveID,
		MinDifficulty:       minDifficulty,
		MaxDifficulty:       maxDifficulty,
		ExcludedIDs:         excluded,
		DiscriminationFloor: DiscriminationFloor,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read candidate questions")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Re-sort defensively: least-used first, then best-discriminating,
	// with unmeasured questions after measured ones in each usage tier.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TimesUsed != candidates[j].TimesUsed {
			return candidates[i].TimesUsed < candidates[j].TimesUsed
		}
		di, dj := candidates[i].Discrimination, candidates[j].Discrimination
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di > *dj
		}
	})

	selected := candidates[0]
	if err := e.questions.IncrementUsage(ctx, selected.ID, e.now()); err != nil {
		// Usage is a soft signal; selection still stands.
		e.logger.Warn("failed to increment question usage",
			"question_id", selected.ID, "error", err)
	}
	return selected, nil
}

// MapDifficultyToComplexity buckets a difficulty into the three tiers.
func MapDifficultyToComplexity(difficulty float64) Complexity {
	switch {
	case difficulty < 40:
		return ComplexityBasic
	case difficulty < 70:
		return ComplexityIntermediate
	default:
		return ComplexityAdvanced
	}
}

// DifficultyRangeForComplexity is the inverse bucketing. The bool is
// false for an unknown complexity.
func DifficultyRangeForComplexity(complexity Complexity) (float64, float64, bool) {
	switch complexity {
	case ComplexityBasic:
		return 0, 40, true
	case ComplexityIntermediate:
		return 40, 70, true
	case ComplexityAdvanced:
		return 70, 100, true
	default:
		return 0, 0, false
	}
}
