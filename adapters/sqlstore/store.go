package sqlstore

import (
	"context"
	stderrors "errors"

	"nuanswers/internal/errors"
	"nuanswers/models"
	"nuanswers/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store implements ports.RecordStore over sqlx. Queries are written with ?
// placeholders and rebound for the connected driver.
type Store struct {
	db *sqlx.DB
}

var _ ports.RecordStore = (*Store)(nil)

// New wraps an open database
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations
func (s *Store) DB() *sqlx.DB { return s.db }

const registrationColumns = `id, timestamp, full_name, student_id, email, grade, campus, major,
	course_name, course_id, professor, professor_email, usage_time_minutes`

// InsertRegistration stores r and sets its ID
func (s *Store) InsertRegistration(ctx context.Context, r *models.RegistrationRecord) error {
	r.Timestamp = r.Timestamp.UTC()
	id, err := s.insert(ctx, `
		INSERT INTO registrations (timestamp, full_name, student_id, email, grade, campus, major,
			course_name, course_id, professor, professor_email, usage_time_minutes)
		VALUES (:timestamp, :full_name, :student_id, :email, :grade, :campus, :major,
			:course_name, :course_id, :professor, :professor_email, :usage_time_minutes)
		RETURNING id
	`, r)
	if err != nil {
		return classify("insert registration", err)
	}
	r.ID = id
	return nil
}

// InsertFeedback stores a post-session rating
func (s *Store) InsertFeedback(ctx context.Context, f *models.FeedbackRecord) error {
	f.Timestamp = f.Timestamp.UTC()
	id, err := s.insert(ctx, `
		INSERT INTO feedback (student_id, course_id, rating, topic, difficulty, timestamp)
		VALUES (:student_id, :course_id, :rating, :topic, :difficulty, :timestamp)
		RETURNING id
	`, f)
	if err != nil {
		return classify("insert feedback", err)
	}
	f.ID = id
	return nil
}

// InsertTopic stores a topic-tracking entry
func (s *Store) InsertTopic(ctx context.Context, t *models.TopicRecord) error {
	t.Timestamp = t.Timestamp.UTC()
	id, err := s.insert(ctx, `
		INSERT INTO topics (student_id, course_id, topic, difficulty, timestamp)
		VALUES (:student_id, :course_id, :topic, :difficulty, :timestamp)
		RETURNING id
	`, t)
	if err != nil {
		return classify("insert topic", err)
	}
	t.ID = id
	return nil
}

// InsertCompletion stores a completion marker
func (s *Store) InsertCompletion(ctx context.Context, c *models.CompletionRecord) error {
	c.Timestamp = c.Timestamp.UTC()
	id, err := s.insert(ctx, `
		INSERT INTO completions (student_id, course_id, completed, timestamp)
		VALUES (:student_id, :course_id, :completed, :timestamp)
		RETURNING id
	`, c)
	if err != nil {
		return classify("insert completion", err)
	}
	c.ID = id
	return nil
}

func (s *Store) insert(ctx context.Context, query string, arg interface{}) (int64, error) {
	rows, err := s.db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, rows.Err()
}

// ListRegistrations returns registrations matching filter, newest first.
// Empty filter fields do not restrict the result.
func (s *Store) ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRecord, error) {
	query, args, err := buildRegistrationQuery(filter)
	if err != nil {
		return nil, errors.Wrap(err, "build registrations query")
	}

	var out []models.RegistrationRecord
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, classify("list registrations", err)
	}
	for i := range out {
		out[i].Timestamp = out[i].Timestamp.UTC()
	}
	return out, nil
}

func buildRegistrationQuery(filter models.RegistrationFilter) (string, []interface{}, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE 1=1"
	var args []interface{}

	if filter.From != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		query += " AND timestamp < ?"
		args = append(args, filter.To.UTC())
	}
	if len(filter.Majors) > 0 {
		query += " AND major IN (?)"
		args = append(args, filter.Majors)
	}
	if len(filter.Campuses) > 0 {
		query += " AND campus IN (?)"
		args = append(args, filter.Campuses)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	if len(filter.Majors) > 0 || len(filter.Campuses) > 0 {
		return sqlx.In(query, args...)
	}
	return query, args, nil
}

// ListFeedback returns all feedback, newest first
func (s *Store) ListFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	var out []models.FeedbackRecord
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, student_id, course_id, rating, topic, difficulty, timestamp
		FROM feedback
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, classify("list feedback", err)
	}
	for i := range out {
		out[i].Timestamp = out[i].Timestamp.UTC()
	}
	return out, nil
}

// ListTopics returns all topic entries, newest first
func (s *Store) ListTopics(ctx context.Context) ([]models.TopicRecord, error) {
	var out []models.TopicRecord
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, student_id, course_id, topic, difficulty, timestamp
		FROM topics
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, classify("list topics", err)
	}
	for i := range out {
		out[i].Timestamp = out[i].Timestamp.UTC()
	}
	return out, nil
}

// ListCompletions returns all completion markers, newest first
func (s *Store) ListCompletions(ctx context.Context) ([]models.CompletionRecord, error) {
	var out []models.CompletionRecord
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, student_id, course_id, completed, timestamp
		FROM completions
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, classify("list completions", err)
	}
	for i := range out {
		out[i].Timestamp = out[i].Timestamp.UTC()
	}
	return out, nil
}

// classify maps driver errors onto the application taxonomy
func classify(op string, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514", "23502": // check_violation, not_null_violation
			return errors.WithCode(errors.CodeValidationError, errors.Persistence(op+": rejected by store", err))
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Persistence(op+": timed out", err)
	}
	return errors.Persistence(op, err)
}
