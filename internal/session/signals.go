package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SignalChannel carries dashboard signals to every open admin page
const SignalChannel = "dashboard:signals"

// Message is the pub/sub payload of one signal
type Message struct {
	Signal string `json:"signal"`
	Actor  string `json:"actor,omitempty"`
}

// Publisher is the subset of services.RedisCache used to fan signals out
type Publisher interface {
	Publish(ctx context.Context, channel, message string) error
}

// Subscriber opens a subscription on a channel
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

// SignalBus publishes signals raised by dashboard actions
type SignalBus struct {
	pub Publisher
	log *zap.Logger
}

func NewSignalBus(pub Publisher, log *zap.Logger) *SignalBus {
	return &SignalBus{pub: pub, log: log}
}

// Publish sends every signal; failures are logged and never returned
func (b *SignalBus) Publish(ctx context.Context, actor string, signals []string) {
	for _, s := range signals {
		data, err := json.Marshal(Message{Signal: s, Actor: actor})
		if err != nil {
			continue
		}
		if err := b.pub.Publish(ctx, SignalChannel, string(data)); err != nil {
			b.log.Warn("publish dashboard signal", zap.String("signal", s), zap.Error(err))
		}
	}
}

// HXTrigger formats signals for the HX-Trigger response header
func HXTrigger(signals []string) string {
	return strings.Join(signals, ", ")
}

// DecodeMessage parses a payload received on SignalChannel
func DecodeMessage(payload string) (Message, error) {
	var m Message
	err := json.Unmarshal([]byte(payload), &m)
	return m, err
}
