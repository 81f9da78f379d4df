package dtos

type CreateProjectRequest struct {
	Name            string  `json:"name" validate:"required,max=200,no_xss"`
	Code            string  `json:"code" validate:"required,alphanum,max=32"`
	Address         string  `json:"address" validate:"max=500,no_xss"`
	Latitude        float64 `json:"latitude" validate:"latitude"`
	Longitude       float64 `json:"longitude" validate:"longitude"`
	TimeZone        string  `json:"timezone,omitempty" validate:"omitempty,timezone"`
	GeofenceRadiusM int     `json:"geofence_radius_m,omitempty" validate:"omitempty,min=10,max=10000"`
	ContactPhone    *string `json:"contact_phone,omitempty" validate:"omitempty,thai_phone"`
	ContactEmail    *string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

type UpdateProjectRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200,no_xss"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=500,no_xss"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	TimeZone        *string  `json:"timezone,omitempty" validate:"omitempty,timezone"`
	GeofenceRadiusM *int     `json:"geofence_radius_m,omitempty" validate:"omitempty,min=10,max=10000"`
	ContactPhone    *string  `json:"contact_phone,omitempty" validate:"omitempty,thai_phone"`
	ContactEmail    *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
}
