package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"nuanswers/models"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the number of bins in the session-duration histogram
const HistogramBins = 30

// TopN bounds the course and topic rankings
const TopN = 10

// Report is the admin dashboard's view of the record store
type Report struct {
	Overview   Overview                  `json:"overview"`
	Returning  Returning                 `json:"returning"`
	Daily      []DailyStat               `json:"daily"`
	Weekday    []WeekdayStat             `json:"weekday"`
	Hourly     []HourStat                `json:"hourly"`
	Durations  DurationSummary           `json:"durations"`
	Histogram  []Bin                     `json:"histogram"`
	Courses    []Count                   `json:"top_courses"`
	CourseIDs  []Count                   `json:"top_course_ids"`
	Professor  []Count                   `json:"professors"`
	Campuses   []Count                   `json:"campuses"`
	Majors     []Count                   `json:"majors"`
	Grades     []Count                   `json:"grades"`
	MajorGrade map[string]map[string]int `json:"major_grade"`
	Feedback   FeedbackSummary           `json:"feedback"`
	Completion CompletionSummary         `json:"completion"`
}

// Overview holds the headline numbers
type Overview struct {
	TotalRegistrations int     `json:"total_registrations"`
	TotalUsageHours    float64 `json:"total_usage_hours"`
	AvgSessionMinutes  float64 `json:"avg_session_minutes"`
	UniqueStudents     int     `json:"unique_students"`
	ActiveCourses      int     `json:"active_courses"`
	ActiveProfessors   int     `json:"active_professors"`
}

// Returning describes students with more than one registration row
type Returning struct {
	ReturnUsers        int     `json:"return_users"`
	ReturnRate         float64 `json:"return_rate_pct"`
	AvgSessionsPerUser float64 `json:"avg_sessions_per_user"`
}

// DailyStat aggregates one calendar day
type DailyStat struct {
	Date          string  `json:"date"`
	Registrations int     `json:"registrations"`
	TotalMinutes  float64 `json:"total_minutes"`
	AvgMinutes    float64 `json:"avg_minutes"`
}

// WeekdayStat aggregates one weekday, Monday first
type WeekdayStat struct {
	Day        string  `json:"day"`
	Sessions   int     `json:"sessions"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// HourStat aggregates one hour of the day
type HourStat struct {
	Hour       int     `json:"hour"`
	Sessions   int     `json:"sessions"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// DurationSummary describes the usage_time_minutes distribution
type DurationSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Bin is one histogram bucket [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Count is one category and its frequency
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FeedbackSummary averages the post-session ratings
type FeedbackSummary struct {
	Responses     int     `json:"responses"`
	AvgRating     float64 `json:"avg_rating"`
	AvgDifficulty float64 `json:"avg_difficulty"`
	TopTopics     []Count `json:"top_topics"`
}

// CompletionSummary reports how many sessions reached feedback
type CompletionSummary struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate_pct"`
}

// Compute builds a report. Day and hour buckets use loc.
func Compute(ds *models.Dataset, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	regs := ds.Registrations
	minutes := make([]float64, len(regs))
	for i, r := range regs {
		minutes[i] = r.UsageTimeMinutes
	}

	return Report{
		Overview:   overview(regs, minutes),
		Returning:  returning(regs),
		Daily:      daily(regs, loc),
		Weekday:    weekdays(regs, loc),
		Hourly:     hourly(regs, loc),
		Durations:  summarize(minutes),
		Histogram:  histogram(minutes, HistogramBins),
		Courses:    top(countBy(regs, func(r models.RegistrationRecord) string { return r.CourseName }), TopN),
		CourseIDs:  top(countBy(regs, func(r models.RegistrationRecord) string { return r.CourseID }), TopN),
		Professor:  countBy(regs, func(r models.RegistrationRecord) string { return r.Professor }),
		Campuses:   countBy(regs, func(r models.RegistrationRecord) string { return r.Campus }),
		Majors:     countBy(regs, func(r models.RegistrationRecord) string { return r.Major }),
		Grades:     countBy(regs, func(r models.RegistrationRecord) string { return r.Grade }),
		MajorGrade: crosstab(regs),
		Feedback:   feedback(ds.Feedback, ds.Topics),
		Completion: completion(ds.Completions),
	}
}

func overview(regs []models.RegistrationRecord, minutes []float64) Overview {
	o := Overview{TotalRegistrations: len(regs)}
	if len(regs) == 0 {
		return o
	}
	total, _ := stats.Sum(minutes)
	o.TotalUsageHours = total / 60
	o.AvgSessionMinutes = mean(minutes)
	o.UniqueStudents = distinct(regs, func(r models.RegistrationRecord) string { return r.StudentID })
	o.ActiveCourses = distinct(regs, func(r models.RegistrationRecord) string { return r.CourseID })
	o.ActiveProfessors = distinct(regs, func(r models.RegistrationRecord) string { return r.Professor })
	return o
}

func returning(regs []models.RegistrationRecord) Returning {
	perStudent := make(map[string]int)
	for _, r := range regs {
		perStudent[r.StudentID]++
	}
	var ret Returning
	if len(perStudent) == 0 {
		return ret
	}
	sessions := make([]float64, 0, len(perStudent))
	for _, n := range perStudent {
		if n > 1 {
			ret.ReturnUsers++
		}
		sessions = append(sessions, float64(n))
	}
	ret.ReturnRate = float64(ret.ReturnUsers) / float64(len(perStudent)) * 100
	ret.AvgSessionsPerUser = mean(sessions)
	return ret
}

func daily(regs []models.RegistrationRecord, loc *time.Location) []DailyStat {
	byDay := make(map[string][]float64)
	for _, r := range regs {
		day := r.Timestamp.In(loc).Format("2006-01-02")
		byDay[day] = append(byDay[day], r.UsageTimeMinutes)
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DailyStat, 0, len(days))
	for _, d := range days {
		sum, _ := stats.Sum(byDay[d])
		out = append(out, DailyStat{Date: d, Registrations: len(byDay[d]), TotalMinutes: sum, AvgMinutes: mean(byDay[d])})
	}
	return out
}

func weekdays(regs []models.RegistrationRecord, loc *time.Location) []WeekdayStat {
	var byDay [7][]float64
	for _, r := range regs {
		wd := r.Timestamp.In(loc).Weekday()
		byDay[wd] = append(byDay[wd], r.UsageTimeMinutes)
	}
	out := make([]WeekdayStat, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		ws := WeekdayStat{Day: wd.String(), Sessions: len(byDay[wd])}
		ws.AvgMinutes = mean(byDay[wd])
		out = append(out, ws)
	}
	return out
}

func hourly(regs []models.RegistrationRecord, loc *time.Location) []HourStat {
	var byHour [24][]float64
	for _, r := range regs {
		h := r.Timestamp.In(loc).Hour()
		byHour[h] = append(byHour[h], r.UsageTimeMinutes)
	}
	out := make([]HourStat, 24)
	for h := range out {
		out[h] = HourStat{Hour: h, Sessions: len(byHour[h])}
		out[h].AvgMinutes = mean(byHour[h])
	}
	return out
}

// mean is stats.Mean with 0 for an empty bucket
func mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

// summarize describes a duration sample. Quartiles use the empirical
// distribution over the sorted data so small samples stay finite.
func summarize(data []float64) DurationSummary {
	var s DurationSummary
	if len(data) == 0 {
		return s
	}
	x := append([]float64(nil), data...)
	sort.Float64s(x)

	var err error
	if s.Mean, err = stats.Mean(x); err != nil {
		return DurationSummary{}
	}
	if s.Median, err = stats.Median(x); err != nil {
		return DurationSummary{}
	}
	if s.StdDev, err = stats.StandardDeviation(x); err != nil {
		return DurationSummary{}
	}
	s.Min, s.Max = x[0], x[len(x)-1]
	s.Q25 = stat.Quantile(0.25, stat.Empirical, x, nil)
	s.Q75 = stat.Quantile(0.75, stat.Empirical, x, nil)
	return s
}

// histogram splits [min, max] into n equal bins; max lands in the last bin
func histogram(data []float64, n int) []Bin {
	if len(data) == 0 || n <= 0 {
		return nil
	}
	x := append([]float64(nil), data...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		hi = lo + 1
	} else {
		hi = math.Nextafter(hi, math.Inf(1))
	}
	dividers := floats.Span(make([]float64, n+1), lo, hi)
	dividers[n] = hi

	counts := stat.Histogram(nil, dividers, x, nil)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	return bins
}

func countBy(regs []models.RegistrationRecord, key func(models.RegistrationRecord) string) []Count {
	m := make(map[string]int)
	for _, r := range regs {
		m[key(r)]++
	}
	return sortCounts(m)
}

// sortCounts orders by frequency, ties by key
func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func top(c []Count, n int) []Count {
	if len(c) > n {
		return c[:n]
	}
	return c
}

func distinct(regs []models.RegistrationRecord, key func(models.RegistrationRecord) string) int {
	seen := make(map[string]struct{})
	for _, r := range regs {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

func crosstab(regs []models.RegistrationRecord) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, r := range regs {
		row, ok := out[r.Major]
		if !ok {
			row = make(map[string]int)
			out[r.Major] = row
		}
		row[r.Grade]++
	}
	return out
}

func feedback(fb []models.FeedbackRecord, topics []models.TopicRecord) FeedbackSummary {
	s := FeedbackSummary{Responses: len(fb)}
	if len(fb) > 0 {
		ratings := make([]float64, len(fb))
		difficulty := make([]float64, len(fb))
		for i, f := range fb {
			ratings[i] = float64(f.Rating)
			difficulty[i] = float64(f.Difficulty)
		}
		s.AvgRating = mean(ratings)
		s.AvgDifficulty = mean(difficulty)
	}

	m := make(map[string]int)
	for _, t := range topics {
		if topic := strings.TrimSpace(t.Topic); topic != "" {
			m[topic]++
		}
	}
	s.TopTopics = top(sortCounts(m), TopN)
	return s
}

func completion(cs []models.CompletionRecord) CompletionSummary {
	s := CompletionSummary{Total: len(cs)}
	for _, c := range cs {
		if c.Completed {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Rate = float64(s.Completed) / float64(s.Total) * 100
	}
	return s
}
