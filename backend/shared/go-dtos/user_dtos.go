package dtos

import (
	"time"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

// User is the public view of models.User. The national ID is only ever
// exposed masked.
type User struct {
	ID           string            `json:"id"`
	ProjectID    *string           `json:"project_id,omitempty"`
	UnitID       *string           `json:"unit_id,omitempty"`
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Phone        string            `json:"phone"`
	IDCardMasked string            `json:"id_card_masked,omitempty"`
	Role         models.UserRole   `json:"role"`
	Status       models.UserStatus `json:"status"`
	RejectReason *string           `json:"reject_reason,omitempty"`
	LastLoginAt  *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	RowVersion   int64             `json:"row_version"`
}

// NewUserFromModel builds the DTO; idCardMasked is supplied by the caller
// because only it holds the decryption key.
func NewUserFromModel(u *models.User, idCardMasked string) User {
	out := User{
		ID:           u.ID.String(),
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		IDCardMasked: idCardMasked,
		Role:         u.Role,
		Status:       u.Status,
		RejectReason: u.RejectReason,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		RowVersion:   u.RowVersion,
	}
	if u.ProjectID != nil {
		s := u.ProjectID.String()
		out.ProjectID = &s
	}
	if u.UnitID != nil {
		s := u.UnitID.String()
		out.UnitID = &s
	}
	return out
}
