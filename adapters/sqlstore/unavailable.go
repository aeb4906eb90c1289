package sqlstore

import (
	"context"

	"nuanswers/models"
)

// Unavailable stands in for the record store when it is not configured.
// Every call fails with Err so each feature reports the configuration problem.
type Unavailable struct {
	Err error
}

func (u Unavailable) InsertRegistration(context.Context, *models.RegistrationRecord) error {
	return u.Err
}

func (u Unavailable) InsertFeedback(context.Context, *models.FeedbackRecord) error { return u.Err }

func (u Unavailable) InsertTopic(context.Context, *models.TopicRecord) error { return u.Err }

func (u Unavailable) InsertCompletion(context.Context, *models.CompletionRecord) error {
	return u.Err
}

func (u Unavailable) ListRegistrations(context.Context, models.RegistrationFilter) ([]models.RegistrationRecord, error) {
	return nil, u.Err
}

func (u Unavailable) ListFeedback(context.Context) ([]models.FeedbackRecord, error) {
	return nil, u.Err
}

func (u Unavailable) ListTopics(context.Context) ([]models.TopicRecord, error) { return nil, u.Err }

func (u Unavailable) ListCompletions(context.Context) ([]models.CompletionRecord, error) {
	return nil, u.Err
}
