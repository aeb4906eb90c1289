package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"nuanswers/internal/errors"
	"nuanswers/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	ds        models.Dataset
	failTopic bool
	filter    models.RegistrationFilter
}

func (f *fakeStore) InsertRegistration(context.Context, *models.RegistrationRecord) error { return nil }
func (f *fakeStore) InsertFeedback(context.Context, *models.FeedbackRecord) error         { return nil }
func (f *fakeStore) InsertTopic(context.Context, *models.TopicRecord) error               { return nil }
func (f *fakeStore) InsertCompletion(context.Context, *models.CompletionRecord) error     { return nil }

func (f *fakeStore) ListRegistrations(_ context.Context, filter models.RegistrationFilter) ([]models.RegistrationRecord, error) {
	f.filter = filter
	return f.ds.Registrations, nil
}
func (f *fakeStore) ListFeedback(context.Context) ([]models.FeedbackRecord, error) {
	return f.ds.Feedback, nil
}
func (f *fakeStore) ListTopics(context.Context) ([]models.TopicRecord, error) {
	if f.failTopic {
		return nil, errors.Persistence("select topics", fmt.Errorf("connection refused"))
	}
	return f.ds.Topics, nil
}
func (f *fakeStore) ListCompletions(context.Context) ([]models.CompletionRecord, error) {
	return f.ds.Completions, nil
}

func reg(student, course string, ts time.Time, minutes float64) models.RegistrationRecord {
	return models.RegistrationRecord{
		Timestamp:        ts,
		StudentID:        student,
		Grade:            "Junior",
		Campus:           "Florham",
		Major:            "Accounting",
		CourseName:       "Intermediate " + course,
		CourseID:         course,
		Professor:        "Prof " + course,
		UsageTimeMinutes: minutes,
	}
}

func sampleDataset() *models.Dataset {
	// 2024-03-04 is a Monday
	mon := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	return &models.Dataset{
		Registrations: []models.RegistrationRecord{
			reg("1234567", "ACCT_2021_01", mon, 10),
			reg("1234567", "ACCT_2021_01", mon.Add(time.Hour), 20),
			reg("7654321", "FIN_3250_02", mon.Add(24*time.Hour), 30),
		},
		Feedback: []models.FeedbackRecord{
			{Rating: 5, Difficulty: 2},
			{Rating: 4, Difficulty: 4},
		},
		Topics: []models.TopicRecord{
			{Topic: "NPV"}, {Topic: "NPV "}, {Topic: "Accruals"}, {Topic: "  "},
		},
		Completions: []models.CompletionRecord{
			{Completed: true}, {Completed: true}, {Completed: false}, {Completed: true},
		},
	}
}

func TestComputeOverview(t *testing.T) {
	rep := Compute(sampleDataset(), time.UTC)

	assert.Equal(t, 3, rep.Overview.TotalRegistrations)
	assert.InDelta(t, 1.0, rep.Overview.TotalUsageHours, 1e-9)
	assert.InDelta(t, 20.0, rep.Overview.AvgSessionMinutes, 1e-9)
	assert.Equal(t, 2, rep.Overview.UniqueStudents)
	assert.Equal(t, 2, rep.Overview.ActiveCourses)
	assert.Equal(t, 2, rep.Overview.ActiveProfessors)

	assert.Equal(t, 1, rep.Returning.ReturnUsers)
	assert.InDelta(t, 50.0, rep.Returning.ReturnRate, 1e-9)
	assert.InDelta(t, 1.5, rep.Returning.AvgSessionsPerUser, 1e-9)
}

func TestComputeTimeBuckets(t *testing.T) {
	rep := Compute(sampleDataset(), time.UTC)

	require.Len(t, rep.Daily, 2)
	assert.Equal(t, DailyStat{Date: "2024-03-04", Registrations: 2, TotalMinutes: 30, AvgMinutes: 15}, rep.Daily[0])
	assert.Equal(t, "2024-03-05", rep.Daily[1].Date)

	require.Len(t, rep.Weekday, 7)
	assert.Equal(t, "Monday", rep.Weekday[0].Day)
	assert.Equal(t, 2, rep.Weekday[0].Sessions)
	assert.Equal(t, "Sunday", rep.Weekday[6].Day)
	assert.Zero(t, rep.Weekday[6].AvgMinutes)

	require.Len(t, rep.Hourly, 24)
	assert.Equal(t, 2, rep.Hourly[15].Sessions)
	assert.Equal(t, 1, rep.Hourly[16].Sessions)
}

func TestComputeUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC Tuesday is 21:00 Monday in New York
	ds := &models.Dataset{Registrations: []models.RegistrationRecord{
		reg("1234567", "ACCT_2021_01", time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), 5),
	}}
	rep := Compute(ds, ny)
	assert.Equal(t, "2024-03-04", rep.Daily[0].Date)
	assert.Equal(t, 1, rep.Hourly[21].Sessions)
	assert.Equal(t, 1, rep.Weekday[0].Sessions)
}

func TestComputeDistributions(t *testing.T) {
	rep := Compute(sampleDataset(), time.UTC)

	assert.Equal(t, []Count{{Key: "ACCT_2021_01", Count: 2}, {Key: "FIN_3250_02", Count: 1}}, rep.CourseIDs)
	assert.Equal(t, []Count{{Key: "Accounting", Count: 3}}, rep.Majors)
	assert.Equal(t, 3, rep.MajorGrade["Accounting"]["Junior"])

	assert.Equal(t, 2, rep.Feedback.Responses)
	assert.InDelta(t, 4.5, rep.Feedback.AvgRating, 1e-9)
	assert.InDelta(t, 3.0, rep.Feedback.AvgDifficulty, 1e-9)
	assert.Equal(t, []Count{{Key: "NPV", Count: 2}, {Key: "Accruals", Count: 1}}, rep.Feedback.TopTopics)

	assert.Equal(t, CompletionSummary{Total: 4, Completed: 3, Rate: 75}, rep.Completion)
}

func TestDurationSummaryAndHistogram(t *testing.T) {
	rep := Compute(sampleDataset(), time.UTC)

	assert.InDelta(t, 20.0, rep.Durations.Median, 1e-9)
	assert.Equal(t, 10.0, rep.Durations.Min)
	assert.Equal(t, 30.0, rep.Durations.Max)

	require.Len(t, rep.Histogram, HistogramBins)
	total := 0
	for _, b := range rep.Histogram {
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, rep.Histogram[0].Count)
	assert.Equal(t, 1, rep.Histogram[HistogramBins-1].Count, "maximum falls in the last bin")
	assert.Equal(t, 10.0, rep.Histogram[0].Lower)
}

func TestDurationSummarySmallSample(t *testing.T) {
	mon := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	ds := &models.Dataset{Registrations: []models.RegistrationRecord{
		reg("1234567", "ACCT_2021_01", mon, 40),
		reg("7654321", "FIN_3250_02", mon.Add(time.Hour), 20),
	}}
	rep := Compute(ds, time.UTC)

	d := rep.Durations
	assert.InDelta(t, 30.0, d.Median, 1e-9)
	assert.Equal(t, 20.0, d.Q25)
	assert.Equal(t, 40.0, d.Q75)
	assert.Equal(t, 20.0, d.Min)
	assert.Equal(t, 40.0, d.Max)

	_, err := json.Marshal(rep)
	assert.NoError(t, err)
}

func TestDurationSummarySingleSession(t *testing.T) {
	d := summarize([]float64{12})
	assert.Equal(t, DurationSummary{Mean: 12, Median: 12, Min: 12, Max: 12, Q25: 12, Q75: 12}, d)
}

func TestHistogramSingleValue(t *testing.T) {
	bins := histogram([]float64{4, 4, 4}, 5)
	require.Len(t, bins, 5)
	assert.Equal(t, 3, bins[0].Count)
	assert.Equal(t, 5.0, bins[4].Upper)
}

func TestComputeEmptyDatasetEncodes(t *testing.T) {
	rep := Compute(&models.Dataset{}, nil)
	assert.Zero(t, rep.Overview)
	assert.Nil(t, rep.Histogram)

	_, err := json.Marshal(rep)
	assert.NoError(t, err, "empty buckets must not produce NaN")
}

func TestLoad(t *testing.T) {
	store := &fakeStore{ds: *sampleDataset()}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ds, err := Load(context.Background(), store, models.RegistrationFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, ds.Registrations, 3)
	assert.Len(t, ds.Feedback, 2)
	assert.Len(t, ds.Topics, 4)
	assert.Len(t, ds.Completions, 4)
	assert.Equal(t, &from, store.filter.From)
}

func TestLoadPropagatesFailure(t *testing.T) {
	store := &fakeStore{ds: *sampleDataset(), failTopic: true}

	_, err := Load(context.Background(), store, models.RegistrationFilter{})
	require.Error(t, err)
	assert.Equal(t, errors.CodePersistence, errors.GetCode(err))
}
