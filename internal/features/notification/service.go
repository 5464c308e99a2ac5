package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Message is a user-facing notice, the equivalent of an admin flash message.
type Message struct {
	UserID     string
	Title      string
	Text       string
	Type       NotificationType
	Link       string
	Safe       bool
	Recipients []string
}

type NotificationService interface {
	MessageUser(ctx context.Context, msg Message) (*Notification, error)
	GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	repo   NotificationRepository
	hub    *Hub
	logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		repo:   repo,
		hub:    hub,
		logger: logger,
	}
}

// MessageUser persists the message and pushes it to the user's open sockets.
func (s *NotificationServiceImpl) MessageUser(ctx context.Context, msg Message) (*Notification, error) {
	if msg.Type == "" {
		msg.Type = NotificationTypeInfo
	}
	n := &Notification{
		UserID:     msg.UserID,
		Title:      msg.Title,
		Message:    msg.Text,
		Type:       msg.Type,
		Link:       msg.Link,
		Safe:       msg.Safe,
		Recipients: msg.Recipients,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to store notification", zap.String("user_id", msg.UserID), zap.Error(err))
		return nil, err
	}
	if s.hub != nil {
		s.hub.Push(n)
	}
	return n, nil
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return s.repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, objID, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
