package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/pkg/export"
	"github.com/Poojitha-916/DRC-capstone/pkg/storage"
)

type registerSourceStub struct{}

func (registerSourceStub) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	approved := models.ApplicationStatusApproved
	return []models.Application{
		{
			ID:             "app-1",
			ScholarID:      "scholar-1",
			Type:           models.ApplicationTypeExtension,
			Status:         models.ApplicationStatusApproved,
			CurrentStage:   models.StageCompleted,
			FinalOutcome:   &approved,
			SubmissionDate: time.Now(),
		},
		{
			ID:             "app-2",
			ScholarID:      "scholar-2",
			Type:           models.ApplicationTypePreTalk,
			Status:         models.ApplicationStatusPending,
			CurrentStage:   models.StageDRC,
			SubmissionDate: time.Now(),
		},
	}, nil
}

func newRegisterExporterForTest(t *testing.T) (*RegisterExporter, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := RegisterExporterConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	exporter := NewRegisterExporter(registerSourceStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return exporter, store
}

func TestRegisterExporterGenerateCSV(t *testing.T) {
	exporter, store := newRegisterExporterForTest(t)
	job := &models.ExportJob{
		ID:        "job-1",
		Params:    models.ExportJobParams{Format: models.ExportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/exports/download/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRegisterExporterGeneratePDF(t *testing.T) {
	exporter, store := newRegisterExporterForTest(t)
	job := &models.ExportJob{
		ID:        "job-2",
		Params:    models.ExportJobParams{Format: models.ExportFormatPDF, Type: models.ApplicationTypeExtension},
		CreatedBy: "admin",
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ExportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRegisterExporterTokenRoundTrip(t *testing.T) {
	exporter, _ := newRegisterExporterForTest(t)
	job := &models.ExportJob{
		ID:     "job-3",
		Params: models.ExportJobParams{Format: models.ExportFormatCSV},
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := exporter.ParseToken(result.Token, false)
	require.NoError(t, err)
	require.Equal(t, "job-3", jobID)
	require.Equal(t, result.RelativePath, relPath)
}
