package dtos

type NotificationQuery struct {
	PageQuery
	UnreadOnly bool
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
