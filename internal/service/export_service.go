package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/export"
)

type exportApplicationLister interface {
	ListForExport(ctx context.Context) ([]models.ApplicationSummary, error)
}

// ExportService renders the application pipeline as CSV or PDF downloads.
type ExportService struct {
	apps   exportApplicationLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	clock  Clock
}

// NewExportService constructs an ExportService instance.
func NewExportService(apps exportApplicationLister, logger *zap.Logger, clock Clock) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &ExportService{
		apps:   apps,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		clock:  clock,
	}
}

var exportHeaders = []string{
	"Reference Number", "Applicant", "Email", "Phone",
	"First Choice College", "First Choice Program", "Grade 12 GWA",
	"Status", "Submitted At",
}

// ApplicationsCSV renders the non-draft pipeline as CSV. Export permission
// is checked before any row is read.
func (s *ExportService) ApplicationsCSV(ctx context.Context, actor models.PermissionSet) ([]byte, string, error) {
	dataset, err := s.dataset(ctx, actor)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, s.filename("csv"), nil
}

// ApplicationsPDF renders the non-draft pipeline as a tabular PDF.
func (s *ExportService) ApplicationsPDF(ctx context.Context, actor models.PermissionSet) ([]byte, string, error) {
	dataset, err := s.dataset(ctx, actor)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.Render(*dataset, "Scholarship Applications")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, s.filename("pdf"), nil
}

func (s *ExportService) dataset(ctx context.Context, actor models.PermissionSet) (*export.Dataset, error) {
	if !actor.CanExportData {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to export data")
	}

	summaries, err := s.apps.ListForExport(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load applications")
	}

	rows := make([]map[string]string, 0, len(summaries))
	for _, sum := range summaries {
		row := map[string]string{
			"Reference Number":     stringOrDash(sum.ReferenceNumber),
			"Applicant":            sum.ApplicantName,
			"Email":                sum.Email,
			"Phone":                sum.Phone,
			"First Choice College": sum.College,
			"First Choice Program": sum.Program,
			"Grade 12 GWA":         floatOrDash(sum.GWA),
			"Status":               string(sum.Status),
			"Submitted At":         timeOrDash(sum.SubmissionDate),
		}
		rows = append(rows, row)
	}
	return &export.Dataset{Headers: exportHeaders, Rows: rows}, nil
}

func (s *ExportService) filename(ext string) string {
	return fmt.Sprintf("applications-%s.%s", s.clock.Now().Format("2006-01-02"), ext)
}

func stringOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func timeOrDash(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.Format("2006-01-02 15:04")
}
