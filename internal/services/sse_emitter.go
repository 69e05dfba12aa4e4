package services

import (
	"context"

	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
	"github.com/yungbote/quitbridge-backend/internal/realtime"
	"github.com/yungbote/quitbridge-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers straight to this instance's hub.
type HubEmitter struct {
	Hub     *realtime.SSEHub
	Metrics *observability.Metrics
}

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
	e.Metrics.IncNotificationPushed("hub")
}

// RedisEmitter publishes to the bus; every instance's forwarder feeds its hub.
type RedisEmitter struct {
	Bus     bus.Bus
	Log     *logger.Logger
	Metrics *observability.Metrics
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, msg); err != nil {
		if e.Log != nil {
			e.Log.Warn("sse publish failed", "channel", msg.Channel, "event", msg.Event, "error", err)
		}
		return
	}
	e.Metrics.IncNotificationPushed("redis")
}
