package dtos

import "time"

type HealthCheckResponse struct {
	Status string `json:"status"`
}

// ConfirmationResponse acknowledges a mutation that has no body of its own.
type ConfirmationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// PageQuery is decoded from ?page=&page_size= on list endpoints.
type PageQuery struct {
	Page     int
	PageSize int
}

// DateRange is decoded from ?from=&to= (RFC 3339 or YYYY-MM-DD).
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type CountResponse struct {
	Count int `json:"count"`
}
