package controllers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

type PatientFileService interface {
	Upload(ctx context.Context, actor models.Actor, fileName string, size int64, content io.Reader) (*models.PatientFile, error)
	List(ctx context.Context, actor models.Actor, patientID uint) ([]models.PatientFile, error)
}

type PatientFileController struct {
	files PatientFileService
	log   *zap.Logger
}

func NewPatientFileController(files PatientFileService, log *zap.Logger) *PatientFileController {
	return &PatientFileController{files: files, log: log}
}

// Upload godoc
// @Summary Upload a medical document
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or image"
// @Success 201 {object} models.PatientFile
// @Failure 400 {object} utils.ErrorResponse
// @Router /files [post]
func (h *PatientFileController) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.log, apperrors.Validation("file is required"))
	}
	src, err := header.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer src.Close()

	file, err := h.files.Upload(c.UserContext(), actor(c), header.Filename, header.Size, src)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// List returns the files of a patient; the patient itself, doctors and admins may read them.
func (h *PatientFileController) List(c *fiber.Ctx) error {
	patientID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	files, err := h.files.List(c.UserContext(), actor(c), patientID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(files)
}
