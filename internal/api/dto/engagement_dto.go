package dto

type VoteReq struct {
	ContentID uint64 `json:"content_id" binding:"required"`
	Type      string `json:"type" binding:"required" validate:"oneof=upvote downvote"`
}

type VoteResultDTO struct {
	Active bool      `json:"active"`
	Stats  *StatsDTO `json:"stats"`
}
