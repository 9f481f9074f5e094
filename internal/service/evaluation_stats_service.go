package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// DefaultRecentLimit is how many recent evaluations a statistics payload carries.
const DefaultRecentLimit = 5

type evaluationStatsRepository interface {
	ListForStats(ctx context.Context, filter models.EvaluationStatsFilter) ([]models.EvaluationStatRow, error)
	SummariesByProfessor(ctx context.Context, professorIDs []string, from, to *time.Time) ([]models.ProfessorRatingSummary, error)
}

type groupCourseResolver interface {
	CoursesForGroups(ctx context.Context, groupIDs []string) (map[string]models.Course, error)
}

// EvaluationStatsService aggregates evaluation rows for a professor, course,
// career or the whole faculty. Nothing is cached; every call reads the database.
type EvaluationStatsService struct {
	repo        evaluationStatsRepository
	courses     groupCourseResolver
	metrics     *MetricsService
	recentLimit int
	logger      *zap.Logger
}

// NewEvaluationStatsService constructs the aggregator.
func NewEvaluationStatsService(repo evaluationStatsRepository, courses groupCourseResolver, metrics *MetricsService, recentLimit int, logger *zap.Logger) *EvaluationStatsService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationStatsService{repo: repo, courses: courses, metrics: metrics, recentLimit: recentLimit, logger: logger}
}

// ForProfessor aggregates the evaluations of one professor.
func (s *EvaluationStatsService) ForProfessor(ctx context.Context, professorID, period string) (dto.EvaluationStatistics, error) {
	stats, _, err := s.compute(ctx, "professor", models.EvaluationStatsFilter{ProfessorIDs: []string{professorID}}, period)
	return stats, err
}

// ForCourse aggregates the evaluations given through any group of one course.
func (s *EvaluationStatsService) ForCourse(ctx context.Context, courseID, period string) (dto.EvaluationStatistics, error) {
	stats, _, err := s.compute(ctx, "course", models.EvaluationStatsFilter{CourseID: courseID}, period)
	return stats, err
}

// ForCareer aggregates the evaluations of courses belonging to one career.
func (s *EvaluationStatsService) ForCareer(ctx context.Context, careerID, period string) (dto.EvaluationStatistics, error) {
	stats, _, err := s.compute(ctx, "career", models.EvaluationStatsFilter{CareerID: careerID}, period)
	return stats, err
}

// ForAllCareers aggregates every evaluation once and also splits the rows by the
// career of their course. The per-career summaries carry only the figures.
func (s *EvaluationStatsService) ForAllCareers(ctx context.Context, period string) (dto.EvaluationStatistics, map[string]dto.CareerSummary, error) {
	stats, scoped, err := s.compute(ctx, "all", models.EvaluationStatsFilter{}, period)
	if err != nil {
		return stats, nil, err
	}
	return stats, summariseByCareer(scoped.rows, scoped.courses), nil
}

// ProfessorSummaries returns count and average per professor with one query.
// Professors without evaluations are absent from the map.
func (s *EvaluationStatsService) ProfessorSummaries(ctx context.Context, professorIDs []string, period string) (map[string]models.ProfessorRatingSummary, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	from, to := p.Bounds()
	result := make(map[string]models.ProfessorRatingSummary)
	ids := distinct(professorIDs)
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()
	rows, err := s.repo.SummariesByProfessor(ctx, ids, from, to)
	s.metrics.ObserveDBQuery("evaluation_summaries", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise professors")
	}
	for _, row := range rows {
		row.AverageRating = round2(row.AverageRating)
		result[row.ProfessorID] = row
	}
	return result, nil
}

type scopedRows struct {
	rows    []models.EvaluationStatRow
	courses map[string]models.Course
}

func (s *EvaluationStatsService) compute(ctx context.Context, label string, filter models.EvaluationStatsFilter, period string) (dto.EvaluationStatistics, scopedRows, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return dto.EmptyStatistics(period), scopedRows{}, err
	}
	filter.From, filter.To = p.Bounds()

	start := time.Now()
	rows, err := s.repo.ListForStats(ctx, filter)
	s.metrics.ObserveDBQuery("evaluation_stats_"+label, time.Since(start))
	if err != nil {
		return dto.EmptyStatistics(p.token()), scopedRows{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}

	groupIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.GroupID != nil {
			groupIDs = append(groupIDs, *row.GroupID)
		}
	}
	courses, err := s.courses.CoursesForGroups(ctx, groupIDs)
	if err != nil {
		return dto.EmptyStatistics(p.token()), scopedRows{}, err
	}

	stats := aggregateEvaluations(rows, courses, s.recentLimit)
	stats.Period = p.token()
	s.logger.Debug("evaluation statistics computed",
		zap.String("scope", label),
		zap.String("period", p.token()),
		zap.Int("rows", len(rows)),
	)
	return stats, scopedRows{rows: rows, courses: courses}, nil
}

type ratingAccumulator struct {
	sum   float64
	count int
}

func (a *ratingAccumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a ratingAccumulator) average() float64 {
	if a.count == 0 {
		return 0
	}
	return round2(a.sum / float64(a.count))
}

// aggregateEvaluations computes the statistics of rows. courses maps group id to
// course; rows whose group does not resolve count toward totals but not toward
// any course. Null foreign keys are excluded before counting distinct values.
func aggregateEvaluations(rows []models.EvaluationStatRow, courses map[string]models.Course, recentLimit int) dto.EvaluationStatistics {
	stats := dto.EmptyStatistics("")
	if len(rows) == 0 {
		return stats
	}

	var overall ratingAccumulator
	students := make(map[string]struct{})
	professors := make(map[string]struct{})
	perCourse := make(map[string]*ratingAccumulator)
	courseByID := make(map[string]models.Course)

	for _, row := range rows {
		overall.add(row.OverallRating)
		if id := deref(row.StudentID); id != "" {
			students[id] = struct{}{}
		}
		if id := deref(row.ProfessorID); id != "" {
			professors[id] = struct{}{}
		}
		course, ok := courseForRow(row, courses)
		if !ok {
			continue
		}
		acc, exists := perCourse[course.ID]
		if !exists {
			acc = &ratingAccumulator{}
			perCourse[course.ID] = acc
			courseByID[course.ID] = course
		}
		acc.add(row.OverallRating)
	}

	stats.TotalEvaluations = overall.count
	stats.AverageRating = overall.average()
	stats.DistinctStudents = len(students)
	stats.DistinctProfessorsEvaluated = len(professors)
	stats.DistinctCoursesEvaluated = len(perCourse)

	for id, acc := range perCourse {
		course := courseByID[id]
		stats.PerCourseBreakdown = append(stats.PerCourseBreakdown, dto.CourseBreakdown{
			CourseID:      id,
			Name:          course.Name,
			Code:          course.Code,
			Count:         acc.count,
			AverageRating: acc.average(),
		})
	}
	sort.Slice(stats.PerCourseBreakdown, func(i, j int) bool {
		a, b := stats.PerCourseBreakdown[i], stats.PerCourseBreakdown[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CourseID < b.CourseID
	})

	stats.RecentEvaluations = recentEvaluations(rows, courses, recentLimit)
	return stats
}

func recentEvaluations(rows []models.EvaluationStatRow, courses map[string]models.Course, limit int) []dto.RecentEvaluation {
	ordered := make([]models.EvaluationStatRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]dto.RecentEvaluation, 0, len(ordered))
	for _, row := range ordered {
		recent := dto.RecentEvaluation{
			ID:            row.ID,
			ProfessorID:   deref(row.ProfessorID),
			GroupID:       deref(row.GroupID),
			OverallRating: row.OverallRating,
			Comments:      row.Comments,
			CreatedAt:     row.CreatedAt,
		}
		if course, ok := courseForRow(row, courses); ok {
			recent.CourseID = course.ID
			recent.CourseName = course.Name
			recent.CourseCode = course.Code
		}
		out = append(out, recent)
	}
	return out
}

// summariseByCareer splits rows by the career of their course. Rows whose course
// has no career are only part of the faculty totals.
func summariseByCareer(rows []models.EvaluationStatRow, courses map[string]models.Course) map[string]dto.CareerSummary {
	type careerAcc struct {
		ratings    ratingAccumulator
		professors map[string]struct{}
	}
	accs := make(map[string]*careerAcc)
	for _, row := range rows {
		course, ok := courseForRow(row, courses)
		if !ok || deref(course.CareerID) == "" {
			continue
		}
		careerID := *course.CareerID
		acc, exists := accs[careerID]
		if !exists {
			acc = &careerAcc{professors: make(map[string]struct{})}
			accs[careerID] = acc
		}
		acc.ratings.add(row.OverallRating)
		if id := deref(row.ProfessorID); id != "" {
			acc.professors[id] = struct{}{}
		}
	}

	out := make(map[string]dto.CareerSummary, len(accs))
	for careerID, acc := range accs {
		out[careerID] = dto.CareerSummary{
			CareerID:                    careerID,
			TotalEvaluations:            acc.ratings.count,
			AverageRating:               acc.ratings.average(),
			DistinctProfessorsEvaluated: len(acc.professors),
		}
	}
	return out
}

func courseForRow(row models.EvaluationStatRow, courses map[string]models.Course) (models.Course, bool) {
	if row.GroupID == nil {
		return models.Course{}, false
	}
	course, ok := courses[*row.GroupID]
	return course, ok
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
