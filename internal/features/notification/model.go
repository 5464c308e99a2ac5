package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  string             `bson:"user_id" json:"user_id"`
	Title   string             `bson:"title" json:"title"`
	Message string             `bson:"message" json:"message"`
	Type    NotificationType   `bson:"type" json:"type"`
	Link    string             `bson:"link,omitempty" json:"link,omitempty"`
	// Safe marks Message as trusted markup the client may render as HTML.
	Safe       bool       `bson:"safe" json:"safe"`
	Recipients []string   `bson:"recipients,omitempty" json:"recipients,omitempty"`
	IsRead     bool       `bson:"is_read" json:"is_read"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ReadAt     *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
