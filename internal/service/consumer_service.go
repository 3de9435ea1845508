package service

import (
	"context"
	"encoding/json"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService reindexes the vector store whenever a catalog sync
// completes, decoupling the slow embedding run from the sync request.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	indexerService IIndexerService
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	indexerService IIndexerService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		indexerService: indexerService,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SyncStats
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "unmarshal sync message failed", map[string]interface{}{"error": err.Error()})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	cs.log.Info("consumer", "sync completed, reindexing", map[string]interface{}{
		"total_formations": payload.TotalFormations,
		"total_sessions":   payload.TotalSessions,
	})

	stats, err := cs.indexerService.IndexAllData(ctx)
	if err != nil {
		cs.log.Error("consumer", "reindex failed", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.log.Info("consumer", "reindex finished", map[string]interface{}{"total": stats.Total})
	msg.Ack()
}
