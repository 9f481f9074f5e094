package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

type professorReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.ProfessorDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.Professor, error)
	ListByCareer(ctx context.Context, careerID string) ([]models.ProfessorDetail, error)
	CountByCareer(ctx context.Context) (map[string]int, error)
}

type studentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type coordinatorReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Coordinator, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type groupReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.GroupDetail, error)
	CourseIDsByGroupIDs(ctx context.Context, groupIDs []string) ([]models.GroupCourse, error)
}

type careerReader interface {
	FindByID(ctx context.Context, id string) (*models.Career, error)
	List(ctx context.Context) ([]models.Career, error)
}

// EntityRepositories lists the stores the resolver reads from.
type EntityRepositories struct {
	Professors   professorReader
	Students     studentReader
	Coordinators coordinatorReader
	Courses      courseReader
	Groups       groupReader
	Careers      careerReader
}

// EntityResolver turns foreign keys into display records. Each entity has exactly
// one lookup; missing or inactive rows surface as NOT_FOUND.
type EntityResolver struct {
	repos  EntityRepositories
	logger *zap.Logger
}

// NewEntityResolver constructs an EntityResolver.
func NewEntityResolver(repos EntityRepositories, logger *zap.Logger) *EntityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityResolver{repos: repos, logger: logger}
}

// Professor resolves an active professor with name, email and career.
func (r *EntityResolver) Professor(ctx context.Context, id string) (*models.ProfessorDetail, error) {
	professor, err := r.repos.Professors.FindDetailByID(ctx, id)
	return professor, lookupError(err, "professor")
}

// ProfessorByUser resolves the professor profile of a user.
func (r *EntityResolver) ProfessorByUser(ctx context.Context, userID string) (*models.Professor, error) {
	professor, err := r.repos.Professors.FindByUserID(ctx, userID)
	return professor, lookupError(err, "professor")
}

// StudentByUser resolves the student profile of a user.
func (r *EntityResolver) StudentByUser(ctx context.Context, userID string) (*models.Student, error) {
	student, err := r.repos.Students.FindByUserID(ctx, userID)
	return student, lookupError(err, "student")
}

// CoordinatorByUser resolves the coordinator profile of a user.
func (r *EntityResolver) CoordinatorByUser(ctx context.Context, userID string) (*models.Coordinator, error) {
	coordinator, err := r.repos.Coordinators.FindByUserID(ctx, userID)
	return coordinator, lookupError(err, "coordinator")
}

// Course resolves an active course.
func (r *EntityResolver) Course(ctx context.Context, id string) (*models.Course, error) {
	course, err := r.repos.Courses.FindByID(ctx, id)
	return course, lookupError(err, "course")
}

// Group resolves an active group with its course labels and career.
func (r *EntityResolver) Group(ctx context.Context, id string) (*models.GroupDetail, error) {
	group, err := r.repos.Groups.FindDetailByID(ctx, id)
	return group, lookupError(err, "group")
}

// Career resolves an active career.
func (r *EntityResolver) Career(ctx context.Context, id string) (*models.Career, error) {
	career, err := r.repos.Careers.FindByID(ctx, id)
	return career, lookupError(err, "career")
}

// Careers lists the active careers.
func (r *EntityResolver) Careers(ctx context.Context) ([]models.Career, error) {
	careers, err := r.repos.Careers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	if careers == nil {
		careers = []models.Career{}
	}
	return careers, nil
}

// ProfessorsByCareer lists the active professors whose career matches careerID.
func (r *EntityResolver) ProfessorsByCareer(ctx context.Context, careerID string) ([]models.ProfessorDetail, error) {
	professors, err := r.repos.Professors.ListByCareer(ctx, careerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	if professors == nil {
		professors = []models.ProfessorDetail{}
	}
	return professors, nil
}

// ProfessorCountsByCareer returns active professor head counts keyed by career id.
func (r *EntityResolver) ProfessorCountsByCareer(ctx context.Context) (map[string]int, error) {
	counts, err := r.repos.Professors.CountByCareer(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count professors")
	}
	return counts, nil
}

// CoursesForGroups resolves group ids to their courses with two queries in total:
// groups to course ids, then course ids to courses. Unknown ids are left out.
func (r *EntityResolver) CoursesForGroups(ctx context.Context, groupIDs []string) (map[string]models.Course, error) {
	result := make(map[string]models.Course)
	ids := distinct(groupIDs)
	if len(ids) == 0 {
		return result, nil
	}

	links, err := r.repos.Groups.CourseIDsByGroupIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve groups")
	}
	courseIDs := make([]string, 0, len(links))
	for _, link := range links {
		courseIDs = append(courseIDs, link.CourseID)
	}
	courseIDs = distinct(courseIDs)
	if len(courseIDs) == 0 {
		return result, nil
	}

	courses, err := r.repos.Courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve courses")
	}
	byID := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}
	for _, link := range links {
		if course, ok := byID[link.CourseID]; ok {
			result[link.GroupID] = course
		}
	}
	return result, nil
}

func lookupError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

func isNotFound(err error) bool {
	return errors.Is(err, appErrors.ErrNotFound)
}

// distinct drops empty strings and duplicates, keeping first-seen order.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
