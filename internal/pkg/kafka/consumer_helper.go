package kafka

import (
	"Tipwall/internal/pkg/logger"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"slices"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session, batch, logic)
				// 清空缓冲区 & 重值定时器
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，失败的消息指数退避重试直到成功或会话结束
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)

		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			var retryInterval = 100 * time.Millisecond
			ctx := logger.WithTraceID(session.Context(), fmt.Sprintf("kafka-%s-%d-%d", m.Topic, m.Partition, m.Offset))

			for {
				err := logic(ctx, m)
				if err == nil {
					break
				}
				log.ErrorContext(ctx, "process message error", "err", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryInterval):
				}

				retryInterval *= 2
				if retryInterval > 5*time.Second {
					retryInterval = 5 * time.Second
				}
			}
		}(msg)
	}

	wg.Wait()

	if len(messages) > 0 {
		lastMsg := messages[len(messages)-1]
		session.MarkMessage(lastMsg, "")
		session.Commit()
	}
}

var (
	ErrTableMismatch = errors.New("table name not match")
	ErrEmptyData     = errors.New("data is empty")
	ErrMalformed     = errors.New("malformed canal message")
)

// ToCanalMessage 将kafka消息转换为canal消息结构体，tableNames 为空时不校验表名
func ToCanalMessage(msg *sarama.ConsumerMessage, tableNames ...string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if canalMsg.IsDDL {
		return nil, ErrTableMismatch
	}

	if len(tableNames) > 0 && !slices.Contains(tableNames, canalMsg.Table) {
		return nil, ErrTableMismatch
	}

	if len(canalMsg.Data) == 0 {
		return nil, ErrEmptyData
	}

	return &canalMsg, nil
}

// skippable 这些错误重试也不会成功，直接丢弃该消息
func skippable(ctx context.Context, msg *sarama.ConsumerMessage, err error) bool {
	if errors.Is(err, ErrTableMismatch) || errors.Is(err, ErrEmptyData) || errors.Is(err, ErrMalformed) {
		log.WarnContext(ctx, "skip canal message", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		return true
	}
	return false
}
