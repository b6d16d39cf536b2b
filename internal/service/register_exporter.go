package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/pkg/export"
	"github.com/Poojitha-916/DRC-capstone/pkg/storage"
)

type registerSource interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RegisterExporterConfig tunes export behaviour.
type RegisterExporterConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// RegisterExporter renders the application register and persists the file.
type RegisterExporter struct {
	applications registerSource
	storage      fileStorage
	csv          csvRenderer
	pdf          pdfRenderer
	signer       *storage.SignedURLSigner
	logger       *zap.Logger
	cfg          RegisterExporterConfig
}

// NewRegisterExporter constructs a RegisterExporter.
func NewRegisterExporter(applications registerSource, store fileStorage, signer *storage.SignedURLSigner, cfg RegisterExporterConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *RegisterExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &RegisterExporter{
		applications: applications,
		storage:      store,
		csv:          csv,
		pdf:          pdf,
		signer:       signer,
		logger:       logger,
		cfg:          cfg,
	}
}

// Generate builds the register dataset for the job and stores the rendered file.
func (e *RegisterExporter) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := e.buildDataset(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = e.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = e.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := e.buildFilename(job)
	relPath, err := e.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := e.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(e.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (e *RegisterExporter) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return e.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (e *RegisterExporter) Open(relPath string) (*os.File, error) {
	return e.storage.Open(relPath)
}

// Delete removes a stored export file.
func (e *RegisterExporter) Delete(relPath string) error {
	return e.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (e *RegisterExporter) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = e.cfg.ResultTTL
	}
	return e.storage.CleanupOlderThan(ttl)
}

func (e *RegisterExporter) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	typePart := "all"
	if job.Params.Type != "" {
		typePart = sanitizeFilename(strings.ToLower(string(job.Params.Type)))
	}
	return fmt.Sprintf("applications_%s_%s.%s", typePart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (e *RegisterExporter) buildDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	apps, err := e.applications.List(ctx, models.ApplicationFilter{
		Status: params.Status,
		Type:   params.Type,
		Limit:  200,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(apps))
	for _, app := range apps {
		outcome := ""
		if app.FinalOutcome != nil {
			outcome = string(*app.FinalOutcome)
		}
		rows = append(rows, map[string]string{
			"Application ID": app.ID,
			"Scholar ID":     app.ScholarID,
			"Type":           string(app.Type),
			"Status":         string(app.Status),
			"Current Stage":  string(app.CurrentStage),
			"Final Outcome":  outcome,
			"Submitted":      app.SubmissionDate.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Application ID", "Scholar ID", "Type", "Status", "Current Stage", "Final Outcome", "Submitted"},
		Rows:    rows,
	}
	title := "Application Register"
	if params.Type != "" {
		title = fmt.Sprintf("Application Register: %s", params.Type)
	}
	return dataset, title, nil
}
