package present

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/cafebot-sim/server/internal/core/error"
	"github.com/cafebot-sim/server/internal/robot/model"
	logx "github.com/cafebot-sim/server/pkg/logger"
)

// Event types published on a session channel.
const (
	EventIdle = "idle"
	EventStep = "step"
	EventDone = "done"
)

// Event is the JSON document published for every frame.
type Event struct {
	Type  string      `json:"type"`
	Frame model.Frame `json:"frame"`
	Error string      `json:"error,omitempty"`
	At    time.Time   `json:"at"`
}

type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher sends frames to Redis pub/sub so dashboards can follow a session.
// Publish failures are logged and never reach the planning loop.
type Publisher struct {
	rdb    publishClient
	prefix string
	now    func() time.Time
}

func NewPublisher(rdb publishClient, prefix string) *Publisher {
	if prefix == "" {
		prefix = "cafebot"
	}
	return &Publisher{rdb: rdb, prefix: prefix, now: time.Now}
}

// Channel is the pub/sub channel carrying a session's frames.
func (p *Publisher) Channel(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:frames", p.prefix, sessionID)
}

func (p *Publisher) Idle(ctx context.Context, f model.Frame) {
	p.publish(ctx, Event{Type: EventIdle, Frame: f})
}

func (p *Publisher) Step(ctx context.Context, f model.Frame) {
	p.publish(ctx, Event{Type: EventStep, Frame: f})
}

func (p *Publisher) Done(ctx context.Context, f model.Frame, err error) {
	ev := Event{Type: EventDone, Frame: f}
	if err != nil {
		ev.Error = err.Error()
	}
	p.publish(context.WithoutCancel(ctx), ev)
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	ev.At = p.now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", ev.Frame.SessionID).Msg("Failed to encode frame event")
		return
	}
	channel := p.Channel(ev.Frame.SessionID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		logx.Warn().
			Err(errx.WrapRedis(err)).
			Str("channel", channel).
			Str("event", ev.Type).
			Msg("Failed to publish frame")
		return
	}
	logx.Debug().Str("channel", channel).Str("event", ev.Type).Msg("Frame published")
}
