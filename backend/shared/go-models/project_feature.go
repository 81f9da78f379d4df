package models

import (
	"time"

	"github.com/google/uuid"
)

type FeatureKey string

const (
	FeatureMaintenance        FeatureKey = "maintenance"
	FeatureFacilityBooking    FeatureKey = "facility_booking"
	FeatureParcels            FeatureKey = "parcels"
	FeatureVisitors           FeatureKey = "visitors"
	FeatureBills              FeatureKey = "bills"
	FeatureOnlinePayment      FeatureKey = "online_payment"
	FeatureSlipAICheck        FeatureKey = "slip_ai_check"
	FeaturePatrol             FeatureKey = "patrol"
	FeatureEmailNotifications FeatureKey = "email_notifications"
	FeatureSMSNotifications   FeatureKey = "sms_notifications"
)

// FeatureDefaults lists every known key with its value when neither a
// project override nor a flag rule exists.
var FeatureDefaults = map[FeatureKey]bool{
	FeatureMaintenance:        true,
	FeatureFacilityBooking:    true,
	FeatureParcels:            true,
	FeatureVisitors:           true,
	FeatureBills:              true,
	FeatureOnlinePayment:      false,
	FeatureSlipAICheck:        false,
	FeaturePatrol:             true,
	FeatureEmailNotifications: true,
	FeatureSMSNotifications:   false,
}

func (k FeatureKey) Known() bool {
	_, ok := FeatureDefaults[k]
	return ok
}

// ProjectFeature is a per-project override row.
type ProjectFeature struct {
	ProjectID uuid.UUID  `json:"project_id"`
	Key       FeatureKey `json:"key"`
	Enabled   bool       `json:"enabled"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
