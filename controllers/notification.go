package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, actor models.Actor, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor models.Actor, notificationID uint) error
	MarkAllRead(ctx context.Context, actor models.Actor) (int64, error)
}

type NotificationController struct {
	notifications NotificationService
	log           *zap.Logger
}

func NewNotificationController(notifications NotificationService, log *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, log: log}
}

// List godoc
// @Summary List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (h *NotificationController) List(c *fiber.Ctx) error {
	list, err := h.notifications.List(c.UserContext(), actor(c), c.QueryBool("unread"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

func (h *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.notifications.MarkRead(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	updated, err := h.notifications.MarkAllRead(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
