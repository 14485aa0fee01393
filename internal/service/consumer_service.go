package service

import (
	"context"
	"encoding/json"
	"errors"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ConsumerService drains the classifier topic and feeds each fact to the
// detector.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	detectionService IDetectionService
	logger           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	detectionService IDetectionService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		detectionService: detectionService,
		logger:           log,
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
	var fact dto.ClassifiedEmailFact
	if err := json.Unmarshal(msg.Payload, &fact); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal classified email fact", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed payloads never get better; ack to avoid an endless loop.
		msg.Ack()
		return
	}

	result, err := cs.detectionService.Process(ctx, &fact)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrInvalidState),
			errors.Is(err, apperror.ErrNotFound):
			// The fact itself is unusable; retrying will not change that.
			cs.logger.Warn("consumer", "Dropping unusable fact", map[string]interface{}{
				"session_id": fact.SessionId.String(),
				"error":      err.Error(),
			})
			msg.Ack()
		default:
			cs.logger.Error("consumer", "Detection failed, will retry", map[string]interface{}{
				"session_id": fact.SessionId.String(),
				"error":      err.Error(),
			})
			msg.Nack()
		}
		return
	}

	cs.logger.Info("consumer", "Fact processed", map[string]interface{}{
		"service_name":    result.ServiceName,
		"subscription_id": result.SubscriptionId.String(),
		"created":         result.Created,
		"normalized":      result.Normalized,
	})
	msg.Ack()
}
