// backend/shared/go-models/audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate   AuditAction = "CREATE"
	AuditUpdate   AuditAction = "UPDATE"
	AuditDelete   AuditAction = "DELETE"
	AuditApprove  AuditAction = "APPROVE"
	AuditReject   AuditAction = "REJECT"
	AuditLogin    AuditAction = "LOGIN"
	AuditCheckIn  AuditAction = "CHECK_IN"
	AuditCheckOut AuditAction = "CHECK_OUT"
)

type AuditTargetType string

const (
	TargetProject     AuditTargetType = "PROJECT"
	TargetUser        AuditTargetType = "USER"
	TargetUnit        AuditTargetType = "UNIT"
	TargetMaintenance AuditTargetType = "MAINTENANCE"
	TargetFacility    AuditTargetType = "FACILITY"
	TargetBooking     AuditTargetType = "BOOKING"
	TargetParcel      AuditTargetType = "PARCEL"
	TargetVisitor     AuditTargetType = "VISITOR"
	TargetBill        AuditTargetType = "BILL"
	TargetPayment     AuditTargetType = "PAYMENT"
	TargetAttendance  AuditTargetType = "ATTENDANCE"
	TargetCheckpoint  AuditTargetType = "PATROL_CHECKPOINT"
	TargetFeature     AuditTargetType = "FEATURE"
)

type AuditLog struct {
	ID         uuid.UUID        `json:"id"`
	ProjectID  *uuid.UUID       `json:"project_id,omitempty"`
	ActorID    *uuid.UUID       `json:"actor_id,omitempty"`
	Action     AuditAction      `json:"action"`
	TargetID   uuid.UUID        `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    *json.RawMessage `json:"details,omitempty"` // JSONB field for before/after states
	IPAddress  *string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
