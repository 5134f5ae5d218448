package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// GetLearningProfile returns the user's learning profile.
func (d *DB) GetLearningProfile(ctx context.Context, userID int32) (*store.LearningProfile, error) {
	query := `
		SELECT user_id, data_quality, optimal_session_min, session_confidence,
			preferred_times, style, curve, content_preferences, attention_cycle_min, updated_at
		FROM learning_profile
		WHERE user_id = $1
	`
	var profile store.LearningProfile
	var preferredTimes, style, curve, contentPreferences []byte
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.DataQuality,
		&profile.OptimalSessionMin,
		&profile.SessionConfidence,
		&preferredTimes,
		&style,
		&curve,
		&contentPreferences,
		&profile.AttentionCycleMin,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get learning profile")
	}
	if err := json.Unmarshal(preferredTimes, &profile.PreferredTimes); err != nil {
		return nil, errors.Wrap(err, "failed to decode preferred times")
	}
	if err := json.Unmarshal(style, &profile.Style); err != nil {
		return nil, errors.Wrap(err, "failed to decode learning style")
	}
	if err := json.Unmarshal(curve, &profile.Curve); err != nil {
		return nil, errors.Wrap(err, "failed to decode curve snapshot")
	}
	if err := json.Unmarshal(contentPreferences, &profile.ContentPreferences); err != nil {
		return nil, errors.Wrap(err, "failed to decode content preferences")
	}
	return &profile, nil
}

// ListStrugglePredictions returns active predictions at or above the
// confidence floor, most probable first.
func (d *DB) ListStrugglePredictions(ctx context.Context, userID int32, confidenceFloor float64) ([]*store.StrugglePrediction, error) {
	query := `
		SELECT id, user_id, topic, probability, confidence, interventions, created_at
		FROM struggle_prediction
		WHERE user_id = $1 AND confidence >= $2
		ORDER BY probability DESC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, confidenceFloor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list struggle predictions")
	}
	defer rows.Close()

	list := []*store.StrugglePrediction{}
	for rows.Next() {
		var prediction store.StrugglePrediction
		var interventions []byte
		if err := rows.Scan(
			&prediction.ID,
			&prediction.UserID,
			&prediction.Topic,
			&prediction.Probability,
			&prediction.Confidence,
			&interventions,
			&prediction.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan struggle prediction")
		}
		if err := json.Unmarshal(interventions, &prediction.Interventions); err != nil {
			return nil, errors.Wrap(err, "failed to decode interventions")
		}
		list = append(list, &prediction)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate struggle predictions")
	}
	return list, nil
}

// GetOrchestrationRecommendation returns the current recommendation.
func (d *DB) GetOrchestrationRecommendation(ctx context.Context, userID int32) (*store.OrchestrationRecommendation, error) {
	query := `
		SELECT user_id, recommended_start, recommended_duration_min, confidence, adherence_rate, updated_at
		FROM orchestration_recommendation
		WHERE user_id = $1
	`
	var rec store.OrchestrationRecommendation
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.RecommendedStart,
		&rec.RecommendedDurationMin,
		&rec.Confidence,
		&rec.AdherenceRate,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get orchestration recommendation")
	}
	return &rec, nil
}

// GetBurnoutAssessment returns the current burnout assessment.
func (d *DB) GetBurnoutAssessment(ctx context.Context, userID int32) (*store.BurnoutAssessment, error) {
	query := `
		SELECT user_id, risk, assessed_at
		FROM burnout_assessment
		WHERE user_id = $1
	`
	var assessment store.BurnoutAssessment
	var risk string
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&assessment.UserID,
		&risk,
		&assessment.AssessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get burnout assessment")
	}
	assessment.Risk = store.RiskLevel(risk)
	return &assessment, nil
}

// ListStressPatterns returns detected patterns at or above the
// confidence floor.
func (d *DB) ListStressPatterns(ctx context.Context, userID int32, confidenceFloor float64) ([]*store.StressPattern, error) {
	query := `
		SELECT id, user_id, type, confidence, detected_at
		FROM stress_pattern
		WHERE user_id = $1 AND confidence >= $2
		ORDER BY detected_at DESC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, confidenceFloor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stress patterns")
	}
	defer rows.Close()

	list := []*store.StressPattern{}
	for rows.Next() {
		var pattern store.StressPattern
		if err := rows.Scan(
			&pattern.ID,
			&pattern.UserID,
			&pattern.Type,
			&pattern.Confidence,
			&pattern.DetectedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan stress pattern")
		}
		list = append(list, &pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate stress patterns")
	}
	return list, nil
}
