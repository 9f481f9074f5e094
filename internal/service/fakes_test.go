package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

type fakeRoleRepo struct {
	mu      sync.Mutex
	active  map[string]map[string]bool
	listErr error
	upserts int
}

func newFakeRoleRepo(seed map[string][]string) *fakeRoleRepo {
	repo := &fakeRoleRepo{active: make(map[string]map[string]bool)}
	for user, roles := range seed {
		repo.active[user] = make(map[string]bool)
		for _, r := range roles {
			repo.active[user][r] = true
		}
	}
	return repo
}

func (f *fakeRoleRepo) Upsert(ctx context.Context, userID string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.active[userID] == nil {
		f.active[userID] = make(map[string]bool)
	}
	f.active[userID][string(role)] = true
	return nil
}

func (f *fakeRoleRepo) Deactivate(ctx context.Context, userID string, role models.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := false
	for _, name := range role.Spellings() {
		if f.active[userID][name] {
			f.active[userID][name] = false
			changed = true
		}
	}
	return changed, nil
}

func (f *fakeRoleRepo) ListActive(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []string
	for name, active := range f.active[userID] {
		if active {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeRoleRepo) ListAssignments(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RoleAssignment
	for name, active := range f.active[userID] {
		out = append(out, models.RoleAssignment{UserID: userID, Role: name, Active: active})
	}
	return out, nil
}

type fakeUserRepo struct {
	users     map[string]*models.User
	audits    []*models.AuditLog
	lastLogin map[string]time.Time
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if f.lastLogin == nil {
		f.lastLogin = make(map[string]time.Time)
	}
	f.lastLogin[id] = ts
	return nil
}

func (f *fakeUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.audits = append(f.audits, log)
	return nil
}

// fakeProfileRepo records profile side effects for every role family.
type fakeProfileRepo struct {
	ensured     []string
	deactivated []string
}

func (f *fakeProfileRepo) ensure(userID string) error {
	f.ensured = append(f.ensured, userID)
	return nil
}

func (f *fakeProfileRepo) DeactivateByUser(ctx context.Context, userID string) error {
	f.deactivated = append(f.deactivated, userID)
	return nil
}

type fakeProfessorProfiles struct{ fakeProfileRepo }

func (f *fakeProfessorProfiles) EnsureForUser(ctx context.Context, userID string, careerID *string) error {
	return f.ensure(userID)
}

type fakeCoordinatorProfiles struct {
	fakeProfileRepo
	careers map[string]string
}

func (f *fakeCoordinatorProfiles) EnsureForUser(ctx context.Context, userID, careerID string) error {
	if f.careers == nil {
		f.careers = make(map[string]string)
	}
	f.careers[userID] = careerID
	return f.ensure(userID)
}

type fakeDeanProfiles struct{ fakeProfileRepo }

func (f *fakeDeanProfiles) EnsureForUser(ctx context.Context, userID string, faculty *string) error {
	return f.ensure(userID)
}

type fakeCareerRepo struct {
	careers map[string]models.Career
}

func (f *fakeCareerRepo) FindByID(ctx context.Context, id string) (*models.Career, error) {
	if c, ok := f.careers[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCareerRepo) List(ctx context.Context) ([]models.Career, error) {
	out := make([]models.Career, 0, len(f.careers))
	for _, c := range f.careers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeEvaluationStore serves stat rows and emulates the submission unique constraint.
type fakeEvaluationStore struct {
	mu        sync.Mutex
	rows      []models.EvaluationStatRow
	listCalls int
	stored    map[string]models.Evaluation
	responses map[string][]models.EvaluationResponse
	writes    int
}

func (f *fakeEvaluationStore) ListForStats(ctx context.Context, filter models.EvaluationStatsFilter) ([]models.EvaluationStatRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []models.EvaluationStatRow
	for _, row := range f.rows {
		if len(filter.ProfessorIDs) > 0 && (row.ProfessorID == nil || !contains(filter.ProfessorIDs, *row.ProfessorID)) {
			continue
		}
		if filter.From != nil && row.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !row.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeEvaluationStore) SummariesByProfessor(ctx context.Context, professorIDs []string, from, to *time.Time) ([]models.ProfessorRatingSummary, error) {
	rows, _ := f.ListForStats(ctx, models.EvaluationStatsFilter{ProfessorIDs: professorIDs, From: from, To: to})
	acc := make(map[string]*models.ProfessorRatingSummary)
	for _, row := range rows {
		s, ok := acc[*row.ProfessorID]
		if !ok {
			s = &models.ProfessorRatingSummary{ProfessorID: *row.ProfessorID}
			acc[*row.ProfessorID] = s
		}
		s.AverageRating = (s.AverageRating*float64(s.Total) + row.OverallRating) / float64(s.Total+1)
		s.Total++
	}
	out := make([]models.ProfessorRatingSummary, 0, len(acc))
	for _, s := range acc {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeEvaluationStore) CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = make(map[string]models.Evaluation)
		f.responses = make(map[string][]models.EvaluationResponse)
	}
	key := evaluation.StudentID + "|" + evaluation.ProfessorID + "|" + evaluation.GroupID + "|" + evaluation.Period
	if _, exists := f.stored[key]; exists {
		return &pq.Error{Code: "23505", Constraint: models.EvaluationUniqueConstraint}
	}
	f.writes++
	evaluation.ID = "ev-" + key
	evaluation.CreatedAt = time.Now().UTC()
	f.stored[key] = *evaluation
	f.responses[key] = responses
	return nil
}

type fakeCourseResolver struct {
	courses map[string]models.Course
	calls   int
	asked   []string
}

func (f *fakeCourseResolver) CoursesForGroups(ctx context.Context, groupIDs []string) (map[string]models.Course, error) {
	f.calls++
	f.asked = append(f.asked, groupIDs...)
	out := make(map[string]models.Course)
	for _, id := range groupIDs {
		if c, ok := f.courses[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type staticRoles map[string][]models.Role

func (s staticRoles) RoleSet(ctx context.Context, userID string) models.RoleSet {
	return models.NewRoleSet(s[userID]...)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }
