package dto

type CreatePostReq struct {
	Content      string `json:"content" binding:"required" validate:"min=1,max=2000"`
	Preview      string `json:"preview" validate:"max=280"`
	Visibility   string `json:"visibility" binding:"required" validate:"oneof=Public Tippable"`
	MinTipAmount uint64 `json:"min_tip_amount"`
}

type CreateReplyReq struct {
	PostID      uint64 `json:"post_id" binding:"required"`
	Content     string `json:"content" binding:"required" validate:"min=1,max=2000"`
	Preview     string `json:"preview" validate:"max=280"`
	Visibility  string `json:"visibility" binding:"required" validate:"oneof=Public Tippable"`
	UnlockPrice uint64 `json:"unlock_price"`
}

// StageProgressDTO 创建流程中单个阶段的状态
type StageProgressDTO struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type CreateResultDTO struct {
	LedgerID   uint64              `json:"ledger_id"`
	TxHash     string              `json:"tx_hash"`
	FallbackID bool                `json:"fallback_id"`
	Warnings   []string            `json:"warnings"`
	Stages     []*StageProgressDTO `json:"stages"`
}

type StatsDTO struct {
	ContentID     uint64 `json:"content_id"`
	UpvoteCount   int64  `json:"upvote_count"`
	DownvoteCount int64  `json:"downvote_count"`
	ReplyCount    int64  `json:"reply_count"`
	Score         int64  `json:"score"`
}

type AccessDTO struct {
	HasAccess bool   `json:"has_access"`
	Reason    string `json:"reason"`
}

// ContentDTO 帖子或回复详情，无权访问时 Content 为空
type ContentDTO struct {
	LedgerID     uint64    `json:"ledger_id"`
	PostID       uint64    `json:"post_id,omitempty"`
	Preview      string    `json:"preview"`
	Content      string    `json:"content,omitempty"`
	ContentHash  string    `json:"content_hash"`
	Visibility   string    `json:"visibility"`
	MinTipAmount uint64    `json:"min_tip_amount"`
	TxHash       string    `json:"tx_hash"`
	CreatedAt    string    `json:"created_at"`
	Access       AccessDTO `json:"access"`
	Stats        *StatsDTO `json:"stats,omitempty"`
	ViewerVote   string    `json:"viewer_vote,omitempty"`
}

type FeedReq struct {
	Page     int `form:"page" validate:"min=0"`
	PageSize int `form:"page_size" validate:"min=0,max=50"`
}

type FeedDTO struct {
	Items []*ContentDTO `json:"items"`
	Page  int           `json:"page"`
	Total int           `json:"total"`
}
