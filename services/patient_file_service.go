package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
)

const maxPatientFileSize = 10 << 20

var allowedFileExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Uploader stores a file in the remote file store.
type Uploader interface {
	Upload(ctx context.Context, file any, publicID string) (utils.UploadResult, error)
}

type PatientFileService struct {
	files    repositories.PatientFileRepository
	uploader Uploader
	events   events.Publisher
	log      *zap.Logger
}

func NewPatientFileService(files repositories.PatientFileRepository, uploader Uploader, publisher events.Publisher, log *zap.Logger) *PatientFileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PatientFileService{files: files, uploader: uploader, events: publisher, log: log}
}

// Upload stores a medical document of the calling patient.
func (s *PatientFileService) Upload(ctx context.Context, actor models.Actor, fileName string, size int64, content io.Reader) (*models.PatientFile, error) {
	if !actor.IsPatient() {
		return nil, apperrors.Forbidden("only patients can upload files")
	}
	if s.uploader == nil {
		return nil, apperrors.InvalidState("file uploads are not configured")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedFileExtensions[ext] {
		return nil, apperrors.Validation("file type %q is not allowed", ext)
	}
	if size <= 0 || size > maxPatientFileSize {
		return nil, apperrors.Validation("file must be between 1 byte and 10 MB")
	}

	publicID := fmt.Sprintf("patient_%d_%s", actor.ID, utils.GenerateUUID())
	result, err := s.uploader.Upload(ctx, content, publicID)
	if err != nil {
		return nil, err
	}
	file := &models.PatientFile{
		PatientID: actor.ID,
		FileName:  filepath.Base(fileName),
		URL:       result.URL,
		PublicID:  result.PublicID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	s.log.Info("patient file uploaded", zap.Uint("patient_id", actor.ID), zap.Uint("file_id", file.ID))
	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Type:      events.FileUploaded,
			ActorID:   actor.ID,
			PatientID: actor.ID,
			FileID:    file.ID,
		})
	}
	return file, nil
}

func (s *PatientFileService) List(ctx context.Context, actor models.Actor, patientID uint) ([]models.PatientFile, error) {
	if !actor.ActsAsPatient(patientID) && !actor.IsAdmin() && !actor.IsDoctor() {
		return nil, apperrors.Forbidden("files belong to another patient")
	}
	return s.files.ListByPatient(ctx, patientID)
}
