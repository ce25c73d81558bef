package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/wallet"
	"github.com/fekuna/blueice-inventory-service/internal/wallet/dto"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// WalletListener folds OrderCompleted events into the bottle wallets.
type WalletListener struct {
	consumer MessageReader
	uc       wallet.UseCase
	logger   logger.ZapLogger
}

func NewWalletListener(consumer MessageReader, uc wallet.UseCase, logger logger.ZapLogger) *WalletListener {
	return &WalletListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *WalletListener) Start(ctx context.Context) {
	l.logger.Info("Starting wallet Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping wallet Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCompletedEvent struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Payload   dto.OrderBottlesInput `json:"payload"`
	Timestamp time.Time             `json:"timestamp"`
}

const (
	eventOrderCompleted = "OrderCompleted"
	maxAttempts         = 3
)

func (l *WalletListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != eventOrderCompleted {
		return
	}

	l.logger.Info("Processing OrderCompleted event",
		zap.String("event_id", event.EventID),
		zap.String("order_id", event.Payload.OrderID),
	)

	// Deltas are idempotent per order, so infrastructure failures are safe to retry.
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err := l.uc.ApplyOrderBottles(ctx, &event.Payload)
		if err == nil {
			return
		}
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrNotFound) {
			l.logger.Error("Dropping invalid OrderCompleted event",
				zap.String("order_id", event.Payload.OrderID),
				zap.Error(err),
			)
			return
		}
		l.logger.Error("Failed to apply order bottles",
			zap.String("order_id", event.Payload.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
}
