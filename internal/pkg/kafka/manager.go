package kafka

import (
	"Tipwall/internal/api/config"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	visibilityConsumer sarama.ConsumerGroup
	visibilityHandler  sarama.ConsumerGroupHandler
	visibilityTopics   []string

	statsConsumer sarama.ConsumerGroup
	statsHandler  sarama.ConsumerGroupHandler
	statsTopics   []string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, fanout ChangeFanout, marker DirtyMarker) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	visibilityConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaVisibilityConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	statsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaEngagementConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = visibilityConsumer.Close()
		return nil, err
	}

	return &ConsumerManager{
		visibilityConsumer: visibilityConsumer,
		visibilityHandler:  NewVisibilityEventsHandler(fanout),
		visibilityTopics:   []string{cfg.KafkaVisibilityConsumer.Topic},
		statsConsumer:      statsConsumer,
		statsHandler:       NewStatsDirtyHandler(marker),
		statsTopics:        cfg.KafkaEngagementConsumer.Topics,
	}, nil
}

// Start 启动所有消费者，阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go m.consume(ctx, &wg, "visibility", m.visibilityConsumer, m.visibilityTopics, m.visibilityHandler)
	go m.consume(ctx, &wg, "stats", m.statsConsumer, m.statsTopics, m.statsHandler)

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.visibilityConsumer.Close(); err != nil {
		log.Error("Failed to close visibility consumer", "err", err)
	}
	if err := m.statsConsumer.Close(); err != nil {
		log.Error("Failed to close stats consumer", "err", err)
	}
	wg.Wait()
	return nil
}

func (m *ConsumerManager) consume(ctx context.Context, wg *sync.WaitGroup, name string,
	group sarama.ConsumerGroup, topics []string, handler sarama.ConsumerGroupHandler) {
	defer wg.Done()
	log.Info("consumer started", "name", name, "topics", topics)

	go func() {
		for err := range group.Errors() {
			log.Error("consumer group error", "name", name, "err", err)
		}
	}()

	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			log.Error("Error from consumer", "name", name, "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
