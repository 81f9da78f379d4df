package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGeneral      NotificationType = "general"
	NotificationRegistration NotificationType = "registration"
	NotificationMaintenance  NotificationType = "maintenance"
	NotificationBooking      NotificationType = "booking"
	NotificationParcel       NotificationType = "parcel"
	NotificationVisitor      NotificationType = "visitor"
	NotificationBill         NotificationType = "bill"
	NotificationPayment      NotificationType = "payment"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	ProjectID *uuid.UUID       `json:"project_id,omitempty"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      *string          `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
