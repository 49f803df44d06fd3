package kafka

import (
	"Tipwall/internal/model"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// DirtyMarker 记录需要重算统计的帖子
type DirtyMarker interface {
	MarkDirty(ctx context.Context, contentIDs ...uint64) error
}

// 每张表中指向帖子的列
var statsSourceColumns = map[string]string{
	model.Engagement{}.TableName(): "content_id",
	model.Reply{}.TableName():      "post_id",
}

// StatsDirtyHandler 投票与回复的任何变更都只标脏，由定时任务统一重算
type StatsDirtyHandler struct {
	marker DirtyMarker
}

func NewStatsDirtyHandler(marker DirtyMarker) *StatsDirtyHandler {
	return &StatsDirtyHandler{marker: marker}
}

func (s *StatsDirtyHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("stats dirty consumer setup")
	return nil
}

func (s *StatsDirtyHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("stats dirty consumer cleanup")
	return nil
}

func (s *StatsDirtyHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("stats dirty process batch error", "err", err)
		return err
	}
	return nil
}

func (s *StatsDirtyHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, model.Engagement{}.TableName(), model.Reply{}.TableName())
	if err != nil {
		if skippable(ctx, msg, err) {
			return nil
		}
		return err
	}

	switch canalMsg.Type {
	case INSERT, UPDATE, DELETE:
	default:
		return nil
	}

	column := statsSourceColumns[canalMsg.Table]
	ids := make([]uint64, 0, len(canalMsg.Data)+len(canalMsg.Old))
	for _, row := range canalMsg.Data {
		if id := StrToUint64(row[column]); id != 0 {
			ids = append(ids, id)
		}
	}
	// UPDATE 修改了外键时旧帖子同样需要重算
	for _, row := range canalMsg.Old {
		if id := StrToUint64(row[column]); id != 0 {
			ids = append(ids, id)
		}
	}
	return s.marker.MarkDirty(ctx, ids...)
}
