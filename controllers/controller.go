package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/middleware"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:   fiber.StatusBadRequest,
	apperrors.KindNotFound:     fiber.StatusNotFound,
	apperrors.KindForbidden:    fiber.StatusForbidden,
	apperrors.KindConflict:     fiber.StatusConflict,
	apperrors.KindInvalidState: fiber.StatusUnprocessableEntity,
	apperrors.KindUnauthorized: fiber.StatusUnauthorized,
}

// respondError maps business errors onto their HTTP status; anything else is a 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return c.Status(statusByKind[appErr.Kind]).JSON(utils.ErrorResponse{
			Message: appErr.Message,
			Error:   string(appErr.Kind),
		})
	}
	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
		Message: "Internal server error",
		Error:   "INTERNAL_ERROR",
	})
}

// bind parses the JSON body into dst and runs the struct validation tags.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("failed to parse request body: %v", err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return apperrors.Validation("%s", utils.FormatValidationErrors(err))
	}
	return nil
}

func actor(c *fiber.Ctx) models.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// parseInstant accepts RFC3339 timestamps or plain dates (midnight in loc).
func parseInstant(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

// queryRange reads ?from=&to=; when absent it defaults to [today, today+days).
func queryRange(c *fiber.Ctx, loc *time.Location, now time.Time, days int) (time.Time, time.Time, error) {
	from, to := now, now.AddDate(0, 0, days)
	if raw := c.Query("from"); raw != "" {
		t, err := parseInstant(raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.Validation("invalid from %q", raw)
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseInstant(raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.Validation("invalid to %q", raw)
		}
		to = t
	}
	return from, to, nil
}
