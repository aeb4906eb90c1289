package ports

import (
	"context"

	"nuanswers/models"
)

// RecordStore persists registrations and post-session records.
// Every write is an insert; nothing is updated in place.
type RecordStore interface {
	// InsertRegistration stores r and sets its ID
	InsertRegistration(ctx context.Context, r *models.RegistrationRecord) error

	InsertFeedback(ctx context.Context, f *models.FeedbackRecord) error
	InsertTopic(ctx context.Context, t *models.TopicRecord) error
	InsertCompletion(ctx context.Context, c *models.CompletionRecord) error

	// ListRegistrations returns registrations matching filter, newest first
	ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRecord, error)

	ListFeedback(ctx context.Context) ([]models.FeedbackRecord, error)
	ListTopics(ctx context.Context) ([]models.TopicRecord, error)
	ListCompletions(ctx context.Context) ([]models.CompletionRecord, error)
}
