package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/database"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

const (
	questionCachePattern = "career:*"
	generalQuestionsKey  = "general"
)

type evaluationWriter interface {
	CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) error
}

type enrollmentReader interface {
	IsEnrolled(ctx context.Context, studentID, groupID string) (bool, error)
	ListGroupsForStudent(ctx context.Context, studentID string) ([]models.GroupDetail, error)
	ListProfessorsForStudent(ctx context.Context, studentID string) ([]models.EnrolledProfessor, error)
}

type assignmentReader interface {
	IsAssigned(ctx context.Context, professorID, groupID string) (bool, error)
}

type questionReader interface {
	ListForCareer(ctx context.Context, careerID *string) ([]models.EvaluationQuestion, error)
}

type evaluationEntityResolver interface {
	StudentByUser(ctx context.Context, userID string) (*models.Student, error)
	Group(ctx context.Context, id string) (*models.GroupDetail, error)
}

// EvaluationDeps lists the collaborators of EvaluationService.
type EvaluationDeps struct {
	Evaluations evaluationWriter
	Enrollments enrollmentReader
	Assignments assignmentReader
	Questions   questionReader
	Entities    evaluationEntityResolver
	Roles       roleSetResolver
	Cache       *CacheService
	Metrics     *MetricsService
}

// EvaluationService handles the student side: reachable groups, the question
// catalog and submission. Uniqueness of a submission is left to the database.
type EvaluationService struct {
	deps        EvaluationDeps
	validator   *validator.Validate
	logger      *zap.Logger
	questionTTL time.Duration
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(deps EvaluationDeps, validate *validator.Validate, logger *zap.Logger, questionTTL time.Duration) *EvaluationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{deps: deps, validator: validate, logger: logger, questionTTL: questionTTL}
}

// Submit stores a student's evaluation of a professor through a group. The
// caller must be enrolled in the group and the professor must teach it. All
// payload problems are reported together and nothing is written until they are
// fixed. A repeated submission for the same group and period is ALREADY_EVALUATED.
func (s *EvaluationService) Submit(ctx context.Context, userID string, req dto.SubmitEvaluationRequest) (*dto.SubmitEvaluationResponse, error) {
	fields := fieldErrors(s.validator.Struct(req))
	fields = requireNonBlank(fields, "group_id", req.GroupID)
	fields = requireNonBlank(fields, "professor_id", req.ProfessorID)
	if len(fields) > 0 {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, validationError("invalid evaluation payload", fields)
	}

	student, err := s.studentFor(ctx, userID)
	if err != nil {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, err
	}
	group, err := s.reachableGroup(ctx, student.ID, req.GroupID)
	if err != nil {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, err
	}
	assigned, err := s.deps.Assignments.IsAssigned(ctx, req.ProfessorID, group.ID)
	if err != nil {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
	}
	if !assigned {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, appErrors.Clone(appErrors.ErrForbidden, "professor does not teach this group")
	}

	questions, err := s.questionsForCareer(ctx, group.CareerID)
	if err != nil {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, err
	}
	responses, fields := buildResponses(req.Answers, questions)
	if len(fields) > 0 {
		s.deps.Metrics.ObserveSubmission(SubmissionRejected)
		return nil, validationError("invalid evaluation payload", fields)
	}

	evaluation := &models.Evaluation{
		StudentID:     student.ID,
		ProfessorID:   req.ProfessorID,
		GroupID:       group.ID,
		Period:        group.Period,
		OverallRating: req.OverallRating,
		Comments:      trimmedOrNil(req.Comments),
	}
	if err := s.deps.Evaluations.CreateWithResponses(ctx, evaluation, responses); err != nil {
		if database.IsUniqueViolation(err, models.EvaluationUniqueConstraint) {
			s.deps.Metrics.ObserveSubmission(SubmissionDuplicate)
			return nil, appErrors.Clone(appErrors.ErrAlreadyEvaluated, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	s.deps.Metrics.ObserveSubmission(SubmissionAccepted)
	s.logger.Info("evaluation submitted",
		zap.String("evaluation_id", evaluation.ID),
		zap.String("professor_id", evaluation.ProfessorID),
		zap.String("group_id", evaluation.GroupID),
		zap.String("period", evaluation.Period),
	)
	return &dto.SubmitEvaluationResponse{Evaluation: *evaluation, Responses: responses}, nil
}

// MyGroups lists the caller's active groups with the professors they may evaluate.
func (s *EvaluationService) MyGroups(ctx context.Context, userID string) ([]dto.StudentGroup, error) {
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.deps.Enrollments.ListGroupsForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	professors, err := s.deps.Enrollments.ListProfessorsForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}

	byGroup := make(map[string][]models.EnrolledProfessor)
	for _, p := range professors {
		byGroup[p.GroupID] = append(byGroup[p.GroupID], p)
	}
	out := make([]dto.StudentGroup, 0, len(groups))
	for _, g := range groups {
		list := byGroup[g.ID]
		if list == nil {
			list = []models.EnrolledProfessor{}
		}
		out = append(out, dto.StudentGroup{Group: g, Professors: list})
	}
	return out, nil
}

// Questions returns the survey for a group the caller is enrolled in: the general
// questions plus those of the group's career.
func (s *EvaluationService) Questions(ctx context.Context, userID, groupID string) ([]models.EvaluationQuestion, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, validationError("group_id is required", []appErrors.FieldError{{Field: "group_id", Message: "is required"}})
	}
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	group, err := s.reachableGroup(ctx, student.ID, groupID)
	if err != nil {
		return nil, err
	}
	return s.questionsForCareer(ctx, group.CareerID)
}

// InvalidateQuestionCache drops every cached question catalog.
func (s *EvaluationService) InvalidateQuestionCache(ctx context.Context) error {
	if err := s.deps.Cache.Invalidate(ctx, questionCachePattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate question cache")
	}
	return nil
}

func (s *EvaluationService) studentFor(ctx context.Context, userID string) (*models.Student, error) {
	if !s.deps.Roles.RoleSet(ctx, userID).Has(models.RoleStudent) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can evaluate professors")
	}
	student, err := s.deps.Entities.StudentByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no student profile is linked to this account")
		}
		return nil, err
	}
	return student, nil
}

// reachableGroup requires an active enrolment before anything about the group is read.
func (s *EvaluationService) reachableGroup(ctx context.Context, studentID, groupID string) (*models.GroupDetail, error) {
	enrolled, err := s.deps.Enrollments.IsEnrolled(ctx, studentID, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this group")
	}
	group, err := s.deps.Entities.Group(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this group")
		}
		return nil, err
	}
	return group, nil
}

func (s *EvaluationService) questionsForCareer(ctx context.Context, careerID *string) ([]models.EvaluationQuestion, error) {
	key := "career:" + generalQuestionsKey
	if id := deref(careerID); id != "" {
		key = "career:" + id
	}

	var cached []models.EvaluationQuestion
	if s.deps.Cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	questions, err := s.deps.Questions.ListForCareer(ctx, careerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}
	if questions == nil {
		questions = []models.EvaluationQuestion{}
	}
	s.deps.Cache.Set(ctx, key, questions, s.questionTTL)
	return questions, nil
}

// buildResponses checks answers against the catalog and keeps only the field the
// question type uses. Every problem is returned, not just the first.
func buildResponses(answers []dto.AnswerRequest, questions []models.EvaluationQuestion) ([]models.EvaluationResponse, []appErrors.FieldError) {
	catalog := make(map[string]models.EvaluationQuestion, len(questions))
	for _, q := range questions {
		catalog[q.ID] = q
	}

	var fields []appErrors.FieldError
	answered := make(map[string]struct{}, len(answers))
	responses := make([]models.EvaluationResponse, 0, len(answers))
	for i, answer := range answers {
		path := fmt.Sprintf("answers[%d]", i)
		if answer.QuestionID == "" {
			continue
		}
		q, ok := catalog[answer.QuestionID]
		if !ok {
			fields = append(fields, appErrors.FieldError{Field: path + ".question_id", Message: "is not part of this survey"})
			continue
		}
		if _, dup := answered[q.ID]; dup {
			fields = append(fields, appErrors.FieldError{Field: path + ".question_id", Message: "is answered more than once"})
			continue
		}
		answered[q.ID] = struct{}{}

		response := models.EvaluationResponse{QuestionID: q.ID}
		switch q.Type {
		case models.QuestionRating:
			if answer.Rating == nil {
				fields = append(fields, appErrors.FieldError{Field: path + ".rating", Message: "is required"})
				continue
			}
			if *answer.Rating < models.MinRating || *answer.Rating > models.MaxRating {
				continue
			}
			response.Rating = answer.Rating
		case models.QuestionText:
			text := trimmedOrNil(answer.TextAnswer)
			if text == nil && q.Required {
				fields = append(fields, appErrors.FieldError{Field: path + ".text_answer", Message: "is required"})
				continue
			}
			response.TextAnswer = text
		case models.QuestionOption:
			if answer.SelectedOption == nil || !containsOption(q.Options, *answer.SelectedOption) {
				fields = append(fields, appErrors.FieldError{Field: path + ".selected_option", Message: "must be one of the question options"})
				continue
			}
			response.SelectedOption = answer.SelectedOption
		}
		responses = append(responses, response)
	}

	for _, q := range questions {
		if !q.Required {
			continue
		}
		if _, ok := answered[q.ID]; !ok {
			fields = append(fields, appErrors.FieldError{Field: "answers", Message: fmt.Sprintf("question %s is required", q.ID)})
		}
	}
	return responses, fields
}

// requireNonBlank flags a whitespace-only id the validator's required tag lets through.
func requireNonBlank(fields []appErrors.FieldError, field, value string) []appErrors.FieldError {
	if strings.TrimSpace(value) != "" {
		return fields
	}
	for _, f := range fields {
		if f.Field == field {
			return fields
		}
	}
	return append(fields, appErrors.FieldError{Field: field, Message: "is required"})
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
