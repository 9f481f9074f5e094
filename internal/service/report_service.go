package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// SelfAlias lets a professor address their own statistics without knowing the id.
const SelfAlias = "me"

type roleSetResolver interface {
	RoleSet(ctx context.Context, userID string) models.RoleSet
}

type reportEntityResolver interface {
	Professor(ctx context.Context, id string) (*models.ProfessorDetail, error)
	ProfessorByUser(ctx context.Context, userID string) (*models.Professor, error)
	CoordinatorByUser(ctx context.Context, userID string) (*models.Coordinator, error)
	Course(ctx context.Context, id string) (*models.Course, error)
	Career(ctx context.Context, id string) (*models.Career, error)
	Careers(ctx context.Context) ([]models.Career, error)
	ProfessorsByCareer(ctx context.Context, careerID string) ([]models.ProfessorDetail, error)
	ProfessorCountsByCareer(ctx context.Context) (map[string]int, error)
}

type reportStatsProvider interface {
	ForProfessor(ctx context.Context, professorID, period string) (dto.EvaluationStatistics, error)
	ForCourse(ctx context.Context, courseID, period string) (dto.EvaluationStatistics, error)
	ForCareer(ctx context.Context, careerID, period string) (dto.EvaluationStatistics, error)
	ForAllCareers(ctx context.Context, period string) (dto.EvaluationStatistics, map[string]dto.CareerSummary, error)
	ProfessorSummaries(ctx context.Context, professorIDs []string, period string) (map[string]models.ProfessorRatingSummary, error)
}

// ReportService applies the scope rules of each role on top of the aggregator.
// Roles are read from the role store on every call; a denied scope is always an
// explicit FORBIDDEN, never a narrowed result.
type ReportService struct {
	roles    roleSetResolver
	entities reportEntityResolver
	stats    reportStatsProvider
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(roles roleSetResolver, entities reportEntityResolver, stats reportStatsProvider, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{roles: roles, entities: entities, stats: stats, metrics: metrics, logger: logger}
}

// ProfessorStatistics returns the statistics of one professor. Callers holding only
// teaching roles may read nothing but their own id; coordinators may read the
// professors of their career; deans and admins may read anyone. An unknown
// professor yields zeroed statistics.
func (s *ReportService) ProfessorStatistics(ctx context.Context, userID, professorID, period string) (*dto.ProfessorStatisticsResponse, error) {
	roles, err := s.require(ctx, userID, models.PermViewReports, "professor")
	if err != nil {
		return nil, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	ownID := s.ownProfessorID(ctx, userID)
	if professorID == "" || professorID == SelfAlias {
		if ownID == "" {
			return nil, s.deny("professor", userID, "no professor profile is linked to this account")
		}
		professorID = ownID
	}

	professor, err := s.entities.Professor(ctx, professorID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	switch {
	case roles.HasAny(models.RoleDean, models.RoleAdmin), professorID == ownID:
	case roles.Has(models.RoleCoordinator):
		careerID, err := s.coordinatorCareer(ctx, userID)
		if err != nil {
			return nil, err
		}
		if professor != nil && deref(professor.CareerID) != careerID {
			return nil, s.deny("professor", userID, "professor belongs to another career")
		}
	default:
		return nil, s.deny("professor", userID, "professors may only view their own statistics")
	}

	if professor == nil {
		return &dto.ProfessorStatisticsResponse{Statistics: dto.EmptyStatistics(p.token())}, nil
	}
	stats, err := s.stats.ForProfessor(ctx, professor.ID, period)
	if err != nil {
		return nil, err
	}
	return &dto.ProfessorStatisticsResponse{Professor: professor, Statistics: stats}, nil
}

// CourseStatistics returns the statistics of one course for coordinators of its
// career, deans and admins. An unknown course yields zeroed statistics.
func (s *ReportService) CourseStatistics(ctx context.Context, userID, courseID, period string) (*dto.CourseStatisticsResponse, error) {
	roles, err := s.require(ctx, userID, models.PermViewReports, "course")
	if err != nil {
		return nil, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	course, err := s.entities.Course(ctx, courseID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	switch {
	case roles.HasAny(models.RoleDean, models.RoleAdmin):
	case roles.Has(models.RoleCoordinator):
		careerID, err := s.coordinatorCareer(ctx, userID)
		if err != nil {
			return nil, err
		}
		if course != nil && deref(course.CareerID) != careerID {
			return nil, s.deny("course", userID, "course belongs to another career")
		}
	default:
		return nil, s.deny("course", userID, "course statistics require a coordinator or dean role")
	}

	if course == nil {
		return &dto.CourseStatisticsResponse{Statistics: dto.EmptyStatistics(p.token())}, nil
	}
	stats, err := s.stats.ForCourse(ctx, course.ID, period)
	if err != nil {
		return nil, err
	}
	return &dto.CourseStatisticsResponse{Course: course, Statistics: stats}, nil
}

// CareerReport returns career-wide statistics plus the roster of professors whose
// career is careerID. Coordinators may only request their own career.
func (s *ReportService) CareerReport(ctx context.Context, userID, careerID, period string) (*dto.CareerReport, error) {
	roles, err := s.require(ctx, userID, models.PermViewReports, "career")
	if err != nil {
		return nil, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	switch {
	case roles.HasAny(models.RoleDean, models.RoleAdmin):
	case roles.Has(models.RoleCoordinator):
		own, err := s.coordinatorCareer(ctx, userID)
		if err != nil {
			return nil, err
		}
		if own != careerID {
			return nil, s.deny("career", userID, "coordinators may only view their own career")
		}
	default:
		return nil, s.deny("career", userID, "career reports require a coordinator or dean role")
	}

	report := &dto.CareerReport{Statistics: dto.EmptyStatistics(p.token()), Professors: []dto.ProfessorSummary{}}
	career, err := s.entities.Career(ctx, careerID)
	if err != nil {
		if isNotFound(err) {
			return report, nil
		}
		return nil, err
	}
	report.Career = career

	if report.Statistics, err = s.stats.ForCareer(ctx, careerID, period); err != nil {
		return nil, err
	}

	professors, err := s.entities.ProfessorsByCareer(ctx, careerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(professors))
	for _, p := range professors {
		ids = append(ids, p.ID)
	}
	summaries, err := s.stats.ProfessorSummaries(ctx, ids, period)
	if err != nil {
		return nil, err
	}
	for _, p := range professors {
		summary := summaries[p.ID]
		report.Professors = append(report.Professors, dto.ProfessorSummary{
			ProfessorID:      p.ID,
			FullName:         p.FullName,
			Email:            p.Email,
			TotalEvaluations: summary.Total,
			AverageRating:    summary.AverageRating,
		})
	}
	return report, nil
}

// AllCareersReport returns faculty totals and one summary per active career.
func (s *ReportService) AllCareersReport(ctx context.Context, userID, period string) (*dto.AllCareersReport, error) {
	if _, err := s.require(ctx, userID, models.PermViewAllCareers, "all_careers"); err != nil {
		return nil, err
	}

	totals, perCareer, err := s.stats.ForAllCareers(ctx, period)
	if err != nil {
		return nil, err
	}
	careers, err := s.entities.Careers(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.entities.ProfessorCountsByCareer(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.AllCareersReport{Period: totals.Period, Totals: totals, Careers: make([]dto.CareerSummary, 0, len(careers))}
	for _, career := range careers {
		summary := perCareer[career.ID]
		summary.CareerID = career.ID
		summary.Name = career.Name
		summary.Code = career.Code
		summary.ProfessorCount = counts[career.ID]
		report.Careers = append(report.Careers, summary)
	}
	return report, nil
}

func (s *ReportService) require(ctx context.Context, userID string, perm models.Permission, scope string) (models.RoleSet, error) {
	roles := s.roles.RoleSet(ctx, userID)
	if !models.PermissionsFor(roles).Allows(perm) {
		return nil, s.deny(scope, userID, "missing permission "+string(perm))
	}
	return roles, nil
}

func (s *ReportService) ownProfessorID(ctx context.Context, userID string) string {
	professor, err := s.entities.ProfessorByUser(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn("professor profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return ""
	}
	return professor.ID
}

// coordinatorCareer fails closed: a coordinator without a profile has no scope.
func (s *ReportService) coordinatorCareer(ctx context.Context, userID string) (string, error) {
	coordinator, err := s.entities.CoordinatorByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return "", s.deny("career", userID, "no coordinator profile is linked to this account")
		}
		return "", err
	}
	return coordinator.CareerID, nil
}

func (s *ReportService) deny(scope, userID, message string) error {
	s.metrics.ObserveAccessDenied(scope)
	s.logger.Info("report access denied", zap.String("scope", scope), zap.String("user_id", userID), zap.String("reason", message))
	return appErrors.Clone(appErrors.ErrForbidden, message)
}
