package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/internal/profile"
)

// ErrNotFound is returned when a requested record does not exist.
// Callers that treat absence as a normal condition should check for it
// with errors.Is.
var ErrNotFound = errors.New("record not found")

// Driver is the interface a database backend must implement.
type Driver interface {
	ReviewStore() ReviewStore
	ResponseStore() ResponseStore
	QuestionStore() QuestionStore
	LoadMetricStore() LoadMetricStore
	InsightStore() InsightStore

	Migrate(ctx context.Context) error
	Close() error
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Store services
	Reviews     ReviewStore
	Responses   ResponseStore
	Questions   QuestionStore
	LoadMetrics LoadMetricStore
	Insights    InsightStore
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:      driver,
		profile:     profile,
		Reviews:     driver.ReviewStore(),
		Responses:   driver.ResponseStore(),
		Questions:   driver.QuestionStore(),
		LoadMetrics: driver.LoadMetricStore(),
		Insights:    driver.InsightStore(),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
