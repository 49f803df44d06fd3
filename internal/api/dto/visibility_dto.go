package dto

type VisibilityReq struct {
	ContentID uint64 `form:"content_id" binding:"required"`
	ReplyID   uint64 `form:"reply_id"`
}

type VisibilityDTO struct {
	ContentID  uint64 `json:"content_id"`
	ReplyID    uint64 `json:"reply_id"`
	Visibility string `json:"visibility"`
	EventType  string `json:"event_type"`
	IsCached   bool   `json:"is_cached"`
	Found      bool   `json:"found"`
}

type VisibilityEventDTO struct {
	ID             uint64 `json:"id"`
	ContentID      uint64 `json:"content_id"`
	ReplyID        uint64 `json:"reply_id"`
	ContentType    string `json:"content_type"`
	VisibilityType string `json:"visibility_type"`
	EventType      string `json:"event_type"`
	Actor          string `json:"actor,omitempty"`
	CreatedAt      string `json:"created_at"`
}
