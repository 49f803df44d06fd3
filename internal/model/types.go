package model

// ContentType 内容类型
type ContentType string

const (
	ContentTypePost  ContentType = "post"
	ContentTypeReply ContentType = "reply"
)

// Visibility 内容可见性
type Visibility string

const (
	VisibilityPublic   Visibility = "Public"
	VisibilityTippable Visibility = "Tippable"
)

// Selector 链上合约使用的可见性数值
func (v Visibility) Selector() uint64 {
	if v == VisibilityTippable {
		return 1
	}
	return 0
}

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityTippable
}

// VisibilityFromSelector 由链上数值还原可见性，未知数值按 Tippable 处理
func VisibilityFromSelector(sel uint64) Visibility {
	if sel == 0 {
		return VisibilityPublic
	}
	return VisibilityTippable
}

// EventType 可见性事件类型
type EventType string

const (
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventUnlocked EventType = "unlocked"
	EventRevealed EventType = "revealed"
)

// EngagementType 投票类型
type EngagementType string

const (
	Upvote   EngagementType = "upvote"
	Downvote EngagementType = "downvote"
)

func (t EngagementType) Valid() bool {
	return t == Upvote || t == Downvote
}

// Opposite 互斥的另一种投票
func (t EngagementType) Opposite() EngagementType {
	if t == Upvote {
		return Downvote
	}
	return Upvote
}

// AccessType 访问授权来源
type AccessType string

const (
	AccessUnlock AccessType = "unlock"
	AccessTip    AccessType = "tip"
)

// All 返回需要迁移的全部模型
func All() []any {
	return []any{
		&Content{},
		&Reply{},
		&VisibilityEvent{},
		&Engagement{},
		&PostStats{},
		&UserSession{},
		&ContentAccess{},
	}
}
