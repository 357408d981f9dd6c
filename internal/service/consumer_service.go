package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the rebuild topic and executes accepted ingestion
// runs one message at a time.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	ingestService IIngestService
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestService IIngestService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		ingestService: ingestService,
		logger:        logger,
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

// processMessage always acks. A failed run is recorded on its ingest_runs
// row and needs a fresh trigger; redelivering the message would re-execute
// an already finalized run.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RebuildIndexMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "failed to unmarshal rebuild message", map[string]interface{}{
			"error_ref": err,
		})
		msg.Ack()
		return
	}

	cs.logger.Info("consumer_service", "executing ingestion run", map[string]interface{}{
		"run_id": payload.RunId.String(),
	})

	if err := cs.ingestService.ExecuteRun(ctx, payload.RunId, payload.Force, payload.BatchSize); err != nil {
		cs.logger.Error("consumer_service", "ingestion run failed", map[string]interface{}{
			"run_id":    payload.RunId.String(),
			"error_ref": err,
		})
	}

	msg.Ack()
}
