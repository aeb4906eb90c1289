package analytics

import (
	"context"

	"nuanswers/internal/errors"
	"nuanswers/models"
	"nuanswers/ports"

	"golang.org/x/sync/errgroup"
)

// Load fetches the four record tables concurrently. The registration filter
// applies to registrations only; the other tables are always loaded whole.
func Load(ctx context.Context, store ports.RecordStore, filter models.RegistrationFilter) (*models.Dataset, error) {
	ds := &models.Dataset{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := store.ListRegistrations(gctx, filter)
		ds.Registrations = rows
		return errors.Wrap(err, "load registrations")
	})
	g.Go(func() error {
		rows, err := store.ListFeedback(gctx)
		ds.Feedback = rows
		return errors.Wrap(err, "load feedback")
	})
	g.Go(func() error {
		rows, err := store.ListTopics(gctx)
		ds.Topics = rows
		return errors.Wrap(err, "load topics")
	})
	g.Go(func() error {
		rows, err := store.ListCompletions(gctx)
		ds.Completions = rows
		return errors.Wrap(err, "load completions")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}
