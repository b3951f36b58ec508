package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "routtie/contracts/mq"
	"routtie/pkg/logger"
	"routtie/pkg/trace"
)

// ReminderDueHandler consumes reminder.due events and delivers them. Actual
// push delivery (APNS/FCM) is a platform responsibility; the worker logs the
// delivery and is the seam where a push provider plugs in.
type ReminderDueHandler struct {
	logger *zap.Logger
}

func NewReminderDueHandler(logger *zap.Logger) *ReminderDueHandler {
	return &ReminderDueHandler{logger: logger}
}

func (h *ReminderDueHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ReminderDuePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode reminder.due payload: %w", err)
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	traceLogger := logger.WithTrace(ctx, h.logger)

	traceLogger.Info("Delivering reminder",
		zap.String("alert_id", payload.AlertID),
		zap.Int("user_id", payload.UserID),
		zap.String("title", payload.Title),
		zap.String("body", payload.Body),
	)

	return nil
}
