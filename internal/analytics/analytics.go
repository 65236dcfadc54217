// Package analytics computes the admin dashboard views over a set of feedback
// records: monthly trend, rating distribution, overall averages and status
// counts. Every function is pure and returns zero values for empty input.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

// Category labels as shown on the dashboard
const (
	CategoryCourseContent    = "Course Content"
	CategoryTeachingMethods  = "Teaching Methods"
	CategoryCampusFacilities = "Campus Facilities"
)

// TrendPoint holds the per-category averages for one calendar month.
type TrendPoint struct {
	Month            string  `json:"month"`
	Year             int     `json:"year"`
	MonthNumber      int     `json:"monthNumber"`
	CourseContent    float64 `json:"courseContent"`
	TeachingMethods  float64 `json:"teachingMethods"`
	CampusFacilities float64 `json:"campusFacilities"`
	Count            int     `json:"count"`
}

// DistributionRow counts how often one rating value was given per category.
type DistributionRow struct {
	Rating           int `json:"rating"`
	CourseContent    int `json:"courseContent"`
	TeachingMethods  int `json:"teachingMethods"`
	CampusFacilities int `json:"campusFacilities"`
}

// CategoryAverages are the overall per-category means.
type CategoryAverages struct {
	CourseContent    float64 `json:"courseContent"`
	TeachingMethods  float64 `json:"teachingMethods"`
	CampusFacilities float64 `json:"campusFacilities"`
	Count            int     `json:"count"`
}

// Categories returns the averages as labelled pairs in dashboard order.
func (a CategoryAverages) Categories() []CategoryValue {
	return []CategoryValue{
		{Category: CategoryCourseContent, Value: a.CourseContent},
		{Category: CategoryTeachingMethods, Value: a.TeachingMethods},
		{Category: CategoryCampusFacilities, Value: a.CampusFacilities},
	}
}

// CategoryValue is one labelled average.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// StatusSummary counts records per lifecycle status.
type StatusSummary struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Responded    int     `json:"responded"`
	ResponseRate float64 `json:"responseRate"`
}

// Dashboard bundles every view computed over one result set.
type Dashboard struct {
	Trend        []TrendPoint      `json:"trend"`
	Distribution []DistributionRow `json:"distribution"`
	Averages     CategoryAverages  `json:"averages"`
	Categories   []CategoryValue   `json:"categories"`
	Summary      StatusSummary     `json:"summary"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// BuildDashboard computes all views over records.
func BuildDashboard(records []*entities.Feedback, now time.Time) Dashboard {
	averages := OverallAverages(records)
	return Dashboard{
		Trend:        Trend(records),
		Distribution: Distribution(records),
		Averages:     averages,
		Categories:   averages.Categories(),
		Summary:      Summarize(records),
		GeneratedAt:  now,
	}
}

// accumulator sums in-range ratings per category.
type accumulator struct {
	sums   [3]int
	counts [3]int
}

func (a *accumulator) add(f *entities.Feedback) {
	for i, r := range f.Ratings() {
		if r.Valid() {
			a.sums[i] += int(r)
			a.counts[i]++
		}
	}
}

func (a *accumulator) mean(i int) float64 {
	if a.counts[i] == 0 {
		return 0
	}
	return round2(float64(a.sums[i]) / float64(a.counts[i]))
}

type monthKey struct {
	year  int
	month time.Month
}

// Trend buckets records by the UTC year and month of creation. Points are
// ordered chronologically, oldest first.
func Trend(records []*entities.Feedback) []TrendPoint {
	buckets := make(map[monthKey]*accumulator)
	counts := make(map[monthKey]int)
	var keys []monthKey

	for _, f := range records {
		if f == nil {
			continue
		}
		created := f.CreatedAt.UTC()
		key := monthKey{year: created.Year(), month: created.Month()}
		acc, ok := buckets[key]
		if !ok {
			acc = &accumulator{}
			buckets[key] = acc
			keys = append(keys, key)
		}
		acc.add(f)
		counts[key]++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		acc := buckets[key]
		points = append(points, TrendPoint{
			Month:            time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06"),
			Year:             key.year,
			MonthNumber:      int(key.month),
			CourseContent:    acc.mean(0),
			TeachingMethods:  acc.mean(1),
			CampusFacilities: acc.mean(2),
			Count:            counts[key],
		})
	}
	return points
}

// Distribution always returns five rows, one per rating value. Ratings
// outside [1,5] are not counted.
func Distribution(records []*entities.Feedback) []DistributionRow {
	rows := make([]DistributionRow, entities.MaxRating)
	for i := range rows {
		rows[i].Rating = i + entities.MinRating
	}

	for _, f := range records {
		if f == nil {
			continue
		}
		if f.CourseContent.Valid() {
			rows[f.CourseContent-entities.MinRating].CourseContent++
		}
		if f.TeachingMethods.Valid() {
			rows[f.TeachingMethods-entities.MinRating].TeachingMethods++
		}
		if f.CampusFacilities.Valid() {
			rows[f.CampusFacilities-entities.MinRating].CampusFacilities++
		}
	}
	return rows
}

// OverallAverages returns the per-category mean across records. Empty input
// yields zeros with Count 0.
func OverallAverages(records []*entities.Feedback) CategoryAverages {
	acc := &accumulator{}
	count := 0
	for _, f := range records {
		if f == nil {
			continue
		}
		acc.add(f)
		count++
	}
	return CategoryAverages{
		CourseContent:    acc.mean(0),
		TeachingMethods:  acc.mean(1),
		CampusFacilities: acc.mean(2),
		Count:            count,
	}
}

// Summarize counts records per status.
func Summarize(records []*entities.Feedback) StatusSummary {
	var s StatusSummary
	for _, f := range records {
		if f == nil {
			continue
		}
		s.Total++
		switch f.Status {
		case entities.FeedbackStatusPending:
			s.Pending++
		case entities.FeedbackStatusResponded:
			s.Responded++
		}
	}
	if s.Total > 0 {
		s.ResponseRate = round2(float64(s.Responded) / float64(s.Total))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
