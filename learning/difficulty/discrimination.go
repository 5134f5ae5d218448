package difficulty

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// CalculateDiscrimination computes the item discrimination index for a
// question: the correct-answer rate of the top 27% of scorers minus that
// of the bottom 27%. It returns nil with fewer than 20 responses, since
// the split is meaningless on tiny samples.
func (e *Engine) CalculateDiscrimination(ctx context.Context, questionID string) (*float64, error) {
	responses, err := e.responses.ListQuestionResponses(ctx, questionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read question responses")
	}
	if len(responses) < minDiscriminationResponses {
		return nil, nil
	}

	sorted := make([]*store.ResponseRecord, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	groupSize := int(math.Ceil(0.27 * float64(len(sorted))))
	top := sorted[:groupSize]
	bottom := sorted[len(sorted)-groupSize:]

	discrimination := correctRate(top) - correctRate(bottom)
	return &discrimination, nil
}

func correctRate(responses []*store.ResponseRecord) float64 {
	correct := 0
	for _, response := range responses {
		if response.Score > correctThreshold {
			correct++
		}
	}
	return float64(correct) / float64(len(responses))
}

// ShouldRemoveQuestion reports whether a question discriminates too
// poorly to keep. Insufficient data never flags a question.
func (e *Engine) ShouldRemoveQuestion(ctx context.Context, questionID string) (bool, error) {
	discrimination, err := e.CalculateDiscrimination(ctx, questionID)
	if err != nil {
		return false, err
	}
	if discrimination == nil {
		return false, nil
	}
	return *discrimination < DiscriminationFloor, nil
}

// RefreshDiscrimination recomputes and persists a question's
// discrimination index, flagging it for review when it falls below the
// floor. Called periodically by an external scheduler.
func (e *Engine) RefreshDiscrimination(ctx context.Context, questionID string) error {
	discrimination, err := e.CalculateDiscrimination(ctx, questionID)
	if err != nil {
		return err
	}
	if discrimination == nil {
		return nil
	}
	if err := e.questions.UpdateDiscrimination(ctx, questionID, *discrimination); err != nil {
		return errors.Wrap(err, "failed to persist discrimination")
	}
	if *discrimination < DiscriminationFloor {
		e.logger.Info("question discriminates poorly, flagging for review",
			"question_id", questionID,
			"discrimination", *discrimination)
		if err := e.questions.FlagForReview(ctx, questionID); err != nil {
			return errors.Wrap(err, "failed to flag question for review")
		}
	}
	return nil
}
