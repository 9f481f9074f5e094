package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func newExportFixture() *ReportExportService {
	reports, _ := newReportFixture()
	svc := NewReportExportService(reports, nil)
	svc.now = func() time.Time { return time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportCareerReportCSV(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.ExportCareerReport(context.Background(), "u-dean", "car-sys", "2024-1", "")
	require.NoError(t, err)
	assert.Equal(t, "career-sys_2024-1_20240715.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	body := strings.TrimPrefix(string(file.Payload), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Professor,Email,Evaluations,Average", lines[0])
	assert.Contains(t, body, "Ana Ruiz,ana@uni.edu,2,4.50")
	assert.Equal(t, "Total,,2,4.50", lines[3])
}

func TestExportAllCareersPDF(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.ExportAllCareers(context.Background(), "u-admin", "", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "all-careers_all-time_20240715.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportKeepsReportAccessRules(t *testing.T) {
	svc := newExportFixture()
	ctx := context.Background()

	_, err := svc.ExportCareerReport(ctx, "u-coord", "car-sys", "", "csv")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.ExportAllCareers(ctx, "u-coord", "", "csv")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.ExportAllCareers(ctx, "u-dean", "", "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
