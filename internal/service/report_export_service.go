package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/dto"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
	"github.com/noah-isme/course-eval-api/pkg/export"
)

type reportSource interface {
	CareerReport(ctx context.Context, userID, careerID, period string) (*dto.CareerReport, error)
	AllCareersReport(ctx context.Context, userID, period string) (*dto.AllCareersReport, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportedFile is a rendered report ready to stream.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportExportService renders the roster reports as CSV or PDF. Access rules are
// those of ReportService since every export starts from its JSON counterpart.
type ReportExportService struct {
	reports   reportSource
	renderers map[string]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportExportService constructs the export service with the CSV and PDF renderers.
func NewReportExportService(reports reportSource, logger *zap.Logger) *ReportExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportExportService{
		reports: reports,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportCareerReport renders the professor roster of one career.
func (s *ReportExportService) ExportCareerReport(ctx context.Context, userID, careerID, period, format string) (*ExportedFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.CareerReport(ctx, userID, careerID, period)
	if err != nil {
		return nil, err
	}

	title := "Career report"
	slug := careerID
	if report.Career != nil {
		title = fmt.Sprintf("%s (%s)", report.Career.Name, report.Career.Code)
		slug = report.Career.Code
	}
	data := export.Dataset{
		Title:   withPeriod(title, report.Statistics.Period),
		Headers: []string{"Professor", "Email", "Evaluations", "Average"},
	}
	for _, p := range report.Professors {
		data.Rows = append(data.Rows, map[string]string{
			"Professor":   p.FullName,
			"Email":       p.Email,
			"Evaluations": strconv.Itoa(p.TotalEvaluations),
			"Average":     formatRating(p.AverageRating),
		})
	}
	data.Rows = append(data.Rows, map[string]string{
		"Professor":   "Total",
		"Evaluations": strconv.Itoa(report.Statistics.TotalEvaluations),
		"Average":     formatRating(report.Statistics.AverageRating),
	})
	return s.render(renderer, data, "career-"+slug, report.Statistics.Period)
}

// ExportAllCareers renders the per-career summary of the faculty.
func (s *ReportExportService) ExportAllCareers(ctx context.Context, userID, period, format string) (*ExportedFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.AllCareersReport(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   withPeriod("All careers", report.Period),
		Headers: []string{"Career", "Code", "Professors", "Evaluated", "Evaluations", "Average"},
	}
	for _, c := range report.Careers {
		data.Rows = append(data.Rows, map[string]string{
			"Career":      c.Name,
			"Code":        c.Code,
			"Professors":  strconv.Itoa(c.ProfessorCount),
			"Evaluated":   strconv.Itoa(c.DistinctProfessorsEvaluated),
			"Evaluations": strconv.Itoa(c.TotalEvaluations),
			"Average":     formatRating(c.AverageRating),
		})
	}
	data.Rows = append(data.Rows, map[string]string{
		"Career":      "Total",
		"Evaluated":   strconv.Itoa(report.Totals.DistinctProfessorsEvaluated),
		"Evaluations": strconv.Itoa(report.Totals.TotalEvaluations),
		"Average":     formatRating(report.Totals.AverageRating),
	})
	return s.render(renderer, data, "all-careers", report.Period)
}

func (s *ReportExportService) renderer(format string) (datasetRenderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, validationError("unsupported export format", []appErrors.FieldError{{Field: "format", Message: "must be one of csv pdf"}})
	}
	return renderer, nil
}

func (s *ReportExportService) render(renderer datasetRenderer, data export.Dataset, name, period string) (*ExportedFile, error) {
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	if period == "" {
		period = "all-time"
	}
	filename := fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(name), period, s.now().UTC().Format("20060102"), renderer.Extension())
	s.logger.Debug("report rendered", zap.String("filename", filename), zap.Int("bytes", len(payload)))
	return &ExportedFile{Filename: filename, ContentType: renderer.ContentType(), Payload: payload}, nil
}

func withPeriod(title, period string) string {
	if period == "" {
		return title
	}
	return title + " - " + period
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
