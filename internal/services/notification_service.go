package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

// NotificationService manages notices shown to members. Notifications are
// plain records; clients poll for the ones addressed to them.
type NotificationService struct {
	notifications store.NotificationRepository
	now           func() time.Time
}

func NewNotificationService(repos *store.Repositories) *NotificationService {
	return &NotificationService{notifications: repos.Notifications, now: time.Now}
}

// Add creates an active notification. An empty target addresses everyone.
func (s *NotificationService) Add(ctx context.Context, req models.AddNotificationRequest) (models.MessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return models.MessageResponse{}, validationf("Message is required.")
	}

	target := strings.TrimSpace(req.TargetEmail)
	if target == "" || strings.EqualFold(target, models.NotificationTargetAll) {
		target = models.NotificationTargetAll
	} else {
		target = fund.NormalizeEmail(target)
	}

	n := &models.Notification{
		ID:          uuid.New().String(),
		Message:     message,
		TargetEmail: target,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return models.MessageResponse{}, err
	}
	return models.MessageResponse{Message: "Notification added successfully."}, nil
}

func (s *NotificationService) Toggle(ctx context.Context, req models.ToggleNotificationRequest) (models.MessageResponse, error) {
	if err := s.notifications.SetActive(ctx, req.ID, req.IsActive); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Notification with ID '%s' not found.", req.ID))
	}
	return models.MessageResponse{Message: "Notification status updated."}, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) (models.MessageResponse, error) {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Notification with ID '%s' not found.", id))
	}
	return models.MessageResponse{Message: "Notification deleted."}, nil
}

// ForUser returns the active notifications addressed to email or to all.
func (s *NotificationService) ForUser(ctx context.Context, email string) ([]models.Notification, error) {
	if strings.TrimSpace(email) == "" {
		return nil, validationf("Email parameter is required.")
	}
	return s.notifications.ListActiveFor(ctx, email)
}

// All returns every notification, newest first.
func (s *NotificationService) All(ctx context.Context) ([]models.Notification, error) {
	return s.notifications.ListNotifications(ctx)
}
