package monitor

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Topics published by the service.
const (
	TopicNetwork = "network"
	TopicGas     = "gas"
	TopicBlocks  = "blocks"
	TopicWallets = "wallets"

	// TopicAll subscribes to every topic.
	TopicAll = "*"
)

// ChannelPrefix namespaces pub/sub channels.
const ChannelPrefix = "lumera:"

// Publisher fans snapshots out to subscribers. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{})
}

// Snapshot is the last computed value of a topic.
type Snapshot struct {
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Channel returns the pub/sub channel of a topic, e.g. lumera:gas:updated.
func Channel(topic string) string {
	return ChannelPrefix + topic + ":updated"
}

// ChannelPattern matches the channels of every topic.
func ChannelPattern() string {
	return Channel("*")
}

// TopicOf extracts the topic from a channel name, or returns "" if it is not one of ours.
func TopicOf(channel string) string {
	const suffix = ":updated"
	if len(channel) <= len(ChannelPrefix)+len(suffix) ||
		channel[:len(ChannelPrefix)] != ChannelPrefix ||
		channel[len(channel)-len(suffix):] != suffix {
		return ""
	}
	return channel[len(ChannelPrefix) : len(channel)-len(suffix)]
}

// record stores the snapshot of a topic and publishes it.
func (s *Service) record(ctx context.Context, topic string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("[monitor] encode snapshot", zap.String("topic", topic), zap.Error(err))
		return
	}
	snap := Snapshot{Topic: topic, Data: data, UpdatedAt: s.now()}
	s.snapshots.Store(topic, snap)

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("[monitor] encode message", zap.String("topic", topic), zap.Error(err))
		return
	}
	s.publisher.Publish(ctx, Channel(topic), payload)
}

// Snapshot returns the last recorded value of a topic.
func (s *Service) Snapshot(topic string) (Snapshot, bool) {
	return s.snapshots.Load(topic)
}

// Snapshots returns every recorded topic.
func (s *Service) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, s.snapshots.Size())
	s.snapshots.Range(func(_ string, snap Snapshot) bool {
		out = append(out, snap)
		return true
	})
	return out
}
