package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
	"github.com/eduvault/eduvault-api/pkg/export"
)

// ReportFormat selects the rendered report type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type approvedLister interface {
	ApprovedByCategory(ctx context.Context) ([]models.CategoryGroup, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportResult is a rendered report ready for download.
type ReportResult struct {
	FileName    string
	ContentType string
	Payload     []byte
}

// ReportService renders the approved-receipts listing into downloadable
// CSV or PDF files.
type ReportService struct {
	analytics approvedLister
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(analytics approvedLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{analytics: analytics, csv: csv, pdf: pdf, logger: logger}
}

var reportHeaders = []string{"Category", "Name", "Uploaded By", "Approved By", "Uploaded At"}

// ApprovedReceipts renders the current approved listing in the requested
// format.
func (s *ReportService) ApprovedReceipts(ctx context.Context, format ReportFormat) (*ReportResult, error) {
	groups, err := s.analytics.ApprovedByCategory(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: reportHeaders}
	for _, group := range groups {
		for _, doc := range group.Receipts {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Category":    group.Category,
				"Name":        doc.Name,
				"Uploaded By": doc.UploadedBy,
				"Approved By": doc.ApprovedBy,
				"Uploaded At": doc.UploadedAt.Format(time.RFC3339),
			})
		}
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv report")
		}
		return &ReportResult{
			FileName:    fmt.Sprintf("approved-receipts-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Approved Receipts")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf report")
		}
		return &ReportResult{
			FileName:    fmt.Sprintf("approved-receipts-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}
