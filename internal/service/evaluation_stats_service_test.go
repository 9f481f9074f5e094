package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func statRow(id, student, professor, group string, rating float64, at time.Time) models.EvaluationStatRow {
	row := models.EvaluationStatRow{ID: id, OverallRating: rating, CreatedAt: at}
	if student != "" {
		row.StudentID = strPtr(student)
	}
	if professor != "" {
		row.ProfessorID = strPtr(professor)
	}
	if group != "" {
		row.GroupID = strPtr(group)
	}
	return row
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func newStatsFixture(rows []models.EvaluationStatRow) (*EvaluationStatsService, *fakeEvaluationStore, *fakeCourseResolver) {
	store := &fakeEvaluationStore{rows: rows}
	courses := &fakeCourseResolver{courses: map[string]models.Course{
		"g-alg": {ID: "c-alg", Name: "Algebra", Code: "MAT101", CareerID: strPtr("car-math")},
		"g-db":  {ID: "c-db", Name: "Databases", Code: "SYS210", CareerID: strPtr("car-sys")},
		"g-db2": {ID: "c-db", Name: "Databases", Code: "SYS210", CareerID: strPtr("car-sys")},
	}}
	return NewEvaluationStatsService(store, courses, nil, 0, nil), store, courses
}

func TestForProfessorFiltersByPeriod(t *testing.T) {
	svc, _, _ := newStatsFixture([]models.EvaluationStatRow{
		statRow("e1", "s1", "p1", "g-alg", 3, day(2024, time.February, 10)),
		statRow("e2", "s2", "p1", "g-alg", 4, day(2024, time.March, 10)),
		statRow("e3", "s3", "p1", "g-db", 5, day(2024, time.June, 30)),
		statRow("e4", "s1", "p1", "g-db", 5, day(2024, time.September, 1)),
		statRow("e5", "s2", "p1", "g-db", 5, day(2024, time.October, 1)),
		statRow("e6", "s2", "p2", "g-db", 1, day(2024, time.October, 1)),
	})
	ctx := context.Background()

	all, err := svc.ForProfessor(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, 5, all.TotalEvaluations)
	assert.Equal(t, 4.4, all.AverageRating)
	assert.Equal(t, 3, all.DistinctStudents)
	assert.Equal(t, 1, all.DistinctProfessorsEvaluated)
	assert.Equal(t, 2, all.DistinctCoursesEvaluated)
	assert.Empty(t, all.Period)

	first, err := svc.ForProfessor(ctx, "p1", "2024-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-1", first.Period)
	assert.Equal(t, 3, first.TotalEvaluations)
	assert.Equal(t, 4.0, first.AverageRating)
	require.Len(t, first.PerCourseBreakdown, 2)
	assert.Equal(t, "c-alg", first.PerCourseBreakdown[0].CourseID)
	assert.Equal(t, 2, first.PerCourseBreakdown[0].Count)
	assert.Equal(t, 3.5, first.PerCourseBreakdown[0].AverageRating)
	assert.Equal(t, "e3", first.RecentEvaluations[0].ID)
	assert.Equal(t, "Databases", first.RecentEvaluations[0].CourseName)
}

func TestStatisticsForEmptyScope(t *testing.T) {
	svc, store, _ := newStatsFixture(nil)

	stats, err := svc.ForCourse(context.Background(), "c-none", "2023-2")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEvaluations)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.NotNil(t, stats.PerCourseBreakdown)
	assert.Empty(t, stats.PerCourseBreakdown)
	assert.NotNil(t, stats.RecentEvaluations)
	assert.Empty(t, stats.RecentEvaluations)
	assert.Equal(t, 1, store.listCalls)
}

func TestStatisticsRejectMalformedPeriod(t *testing.T) {
	svc, store, _ := newStatsFixture(nil)

	_, err := svc.ForCareer(context.Background(), "car-sys", "2024-3")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidPeriod))
	assert.Zero(t, store.listCalls)
}

func TestAggregateExcludesNullForeignKeys(t *testing.T) {
	rows := []models.EvaluationStatRow{
		statRow("e1", "s1", "p1", "g-alg", 4, day(2024, time.May, 1)),
		statRow("e2", "", "p1", "g-alg", 2, day(2024, time.May, 2)),
		statRow("e3", "s1", "", "", 3, day(2024, time.May, 3)),
	}
	courses := map[string]models.Course{"g-alg": {ID: "c-alg", Name: "Algebra"}}

	stats := aggregateEvaluations(rows, courses, DefaultRecentLimit)
	assert.Equal(t, 3, stats.TotalEvaluations)
	assert.Equal(t, 3.0, stats.AverageRating)
	assert.Equal(t, 1, stats.DistinctStudents)
	assert.Equal(t, 1, stats.DistinctProfessorsEvaluated)
	assert.Equal(t, 1, stats.DistinctCoursesEvaluated)
	require.Len(t, stats.PerCourseBreakdown, 1)
	assert.Equal(t, 2, stats.PerCourseBreakdown[0].Count)

	require.Len(t, stats.RecentEvaluations, 3)
	assert.Equal(t, "e3", stats.RecentEvaluations[0].ID)
	assert.Empty(t, stats.RecentEvaluations[0].CourseName)
}

func TestAggregateLimitsRecentAndRounds(t *testing.T) {
	var rows []models.EvaluationStatRow
	for i := 0; i < 8; i++ {
		rows = append(rows, statRow(fmt.Sprintf("e%d", i), fmt.Sprintf("s%d", i), "p1", "g-alg", float64(1+i%3), day(2024, time.January, 1+i)))
	}

	stats := aggregateEvaluations(rows, nil, DefaultRecentLimit)
	assert.Equal(t, 8, stats.TotalEvaluations)
	assert.Equal(t, 1.88, stats.AverageRating)
	require.Len(t, stats.RecentEvaluations, DefaultRecentLimit)
	assert.Equal(t, "e7", stats.RecentEvaluations[0].ID)
	assert.Equal(t, "e3", stats.RecentEvaluations[4].ID)
	assert.Empty(t, stats.PerCourseBreakdown)
}

func TestBreakdownOrdering(t *testing.T) {
	rows := []models.EvaluationStatRow{
		statRow("e1", "s1", "p1", "g-b", 5, day(2024, time.May, 1)),
		statRow("e2", "s2", "p1", "g-a", 4, day(2024, time.May, 2)),
		statRow("e3", "s3", "p1", "g-c", 3, day(2024, time.May, 3)),
		statRow("e4", "s4", "p1", "g-c", 3, day(2024, time.May, 4)),
	}
	courses := map[string]models.Course{
		"g-a": {ID: "c-a", Name: "Algebra"},
		"g-b": {ID: "c-b", Name: "Biology"},
		"g-c": {ID: "c-c", Name: "Chemistry"},
	}

	stats := aggregateEvaluations(rows, courses, DefaultRecentLimit)
	require.Len(t, stats.PerCourseBreakdown, 3)
	assert.Equal(t, "c-c", stats.PerCourseBreakdown[0].CourseID)
	assert.Equal(t, "c-a", stats.PerCourseBreakdown[1].CourseID)
	assert.Equal(t, "c-b", stats.PerCourseBreakdown[2].CourseID)
}

func TestForAllCareersSplitsByCourseCareer(t *testing.T) {
	svc, store, courses := newStatsFixture([]models.EvaluationStatRow{
		statRow("e1", "s1", "p1", "g-alg", 4, day(2024, time.May, 1)),
		statRow("e2", "s2", "p2", "g-db", 2, day(2024, time.May, 2)),
		statRow("e3", "s3", "p3", "g-db2", 5, day(2024, time.May, 3)),
		statRow("e4", "s3", "p3", "", 3, day(2024, time.May, 4)),
	})

	totals, perCareer, err := svc.ForAllCareers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 1, courses.calls)
	assert.Equal(t, 4, totals.TotalEvaluations)
	assert.Equal(t, 3.5, totals.AverageRating)

	require.Len(t, perCareer, 2)
	assert.Equal(t, 2, perCareer["car-sys"].TotalEvaluations)
	assert.Equal(t, 3.5, perCareer["car-sys"].AverageRating)
	assert.Equal(t, 2, perCareer["car-sys"].DistinctProfessorsEvaluated)
	assert.Equal(t, 1, perCareer["car-math"].TotalEvaluations)
}

func TestProfessorSummaries(t *testing.T) {
	svc, _, _ := newStatsFixture([]models.EvaluationStatRow{
		statRow("e1", "s1", "p1", "g-alg", 4, day(2024, time.May, 1)),
		statRow("e2", "s2", "p1", "g-alg", 5, day(2024, time.May, 2)),
		statRow("e3", "s3", "p2", "g-db", 1, day(2023, time.May, 3)),
	})

	summaries, err := svc.ProfessorSummaries(context.Background(), []string{"p1", "p2", "p3"}, "2024-1")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries["p1"].Total)
	assert.Equal(t, 4.5, summaries["p1"].AverageRating)
	_, ok := summaries["p2"]
	assert.False(t, ok)
}
