package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

type RatingService interface {
	SubmitRating(ctx context.Context, actor models.Actor, turnID, ratedID uint, score int, subcategories []string, comment string) (*models.Rating, error)
	ListRatingsReceived(ctx context.Context, userID uint) ([]models.Rating, error)
}

type RatingController struct {
	ratings RatingService
	log     *zap.Logger
}

func NewRatingController(ratings RatingService, log *zap.Logger) *RatingController {
	return &RatingController{ratings: ratings, log: log}
}

type SubmitRatingRequest struct {
	RatedID       uint     `json:"rated_id" validate:"required"`
	Score         int      `json:"score" validate:"required,min=1,max=5"`
	Subcategories []string `json:"subcategories" validate:"omitempty,dive,required,max=64"`
	Comment       string   `json:"comment" validate:"omitempty,max=2000"`
}

// SubmitRating godoc
// @Summary Rate the other participant of a completed turn
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "Turn ID"
// @Param rating body SubmitRatingRequest true "Rating"
// @Success 201 {object} models.Rating
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /turns/{id}/ratings [post]
func (h *RatingController) SubmitRating(c *fiber.Ctx) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req SubmitRatingRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	rating, err := h.ratings.SubmitRating(c.UserContext(), actor(c), turnID, req.RatedID, req.Score, req.Subcategories, req.Comment)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

func (h *RatingController) ListReceived(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	ratings, err := h.ratings.ListRatingsReceived(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ratings)
}
