package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/pkg/monitor"
	"github.com/lumera-stats/lumerawatch/pkg/retry"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	sendBuffer   = 64
)

// relayBackoff paces resubscription after the snapshot feed drops.
var relayBackoff = retry.Config{
	InitialDelay:  time.Second,
	MaxDelay:      30 * time.Second,
	Multiplier:    2.0,
	JitterEnabled: true,
}

var errFeedClosed = errors.New("snapshot feed closed")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is a subscription request: {"action": "subscribe"|"unsubscribe", "topic": "gas"}.
type ClientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// ServerMessage is anything pushed to a client. Type is "<topic>.updated", "subscribed",
// "unsubscribed", "status" or "error".
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

var knownTopics = map[string]bool{
	monitor.TopicNetwork: true,
	monitor.TopicGas:     true,
	monitor.TopicBlocks:  true,
	monitor.TopicWallets: true,
	monitor.TopicAll:     true,
}

// topicSet holds the topics one client follows. TopicAll follows everything.
type topicSet struct {
	m *xsync.Map[string, struct{}]
}

func newTopicSet() topicSet {
	return topicSet{m: xsync.NewMap[string, struct{}]()}
}

func (s topicSet) add(topic string)    { s.m.Store(topic, struct{}{}) }
func (s topicSet) remove(topic string) { s.m.Delete(topic) }

func (s topicSet) has(topic string) bool {
	if _, ok := s.m.Load(monitor.TopicAll); ok {
		return true
	}
	_, ok := s.m.Load(topic)
	return ok
}

// wsSession is one upgraded client connection.
type wsSession struct {
	c      *Controller
	conn   *websocket.Conn
	topics topicSet
	send   chan ServerMessage
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// HandleWebSocket upgrades the connection and relays snapshot updates for the topics the client
// subscribes to. Subscribing replays the cached snapshot first.
func (c *Controller) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if c.App.RedisClient == nil {
		http.Error(w, "Live updates not available (Redis disabled)", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			c.App.Logger.Debug("Failed to close WebSocket connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &wsSession{
		c:      c,
		conn:   conn,
		topics: newTopicSet(),
		send:   make(chan ServerMessage, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		logger: c.App.Logger.With(zap.String("remote_addr", r.RemoteAddr)),
	}
	s.logger.Info("WebSocket client connected")
	s.run()
	s.logger.Info("WebSocket client disconnected")
}

// run blocks until the client goes away. Producers stop before send is closed, then the writer
// drains what is left.
func (s *wsSession) run() {
	var producers, writer sync.WaitGroup
	s.spawn(&producers, "relay", s.relay)
	s.spawn(&producers, "ping", s.ping)
	s.spawn(&writer, "writer", s.write)

	s.read()

	s.cancel()
	producers.Wait()
	close(s.send)
	writer.Wait()
}

func (s *wsSession) spawn(wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Panic in WebSocket goroutine",
					zap.String("goroutine", name),
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())))
				s.cancel()
			}
		}()
		fn()
	}()
}

// push queues msg unless the session is shutting down.
func (s *wsSession) push(msg ServerMessage) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// relay follows the Redis snapshot channels, resubscribing with backoff when the feed drops.
// The client sees a status message whenever the feed goes up or down.
func (s *wsSession) relay() {
	failures := 0
	for {
		live, err := s.relayOnce()
		if s.ctx.Err() != nil {
			return
		}
		if live {
			failures = 0
		}
		failures++

		delay := retry.Delay(relayBackoff, failures)
		s.logger.Warn("Snapshot feed lost, resubscribing",
			zap.Int("attempt", failures),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		if !s.push(statusMessage(false)) {
			return
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// relayOnce subscribes and forwards until the feed or the session ends. live reports whether the
// subscription was ever confirmed.
func (s *wsSession) relayOnce() (live bool, err error) {
	pubsub := s.c.App.RedisClient.PSubscribe(s.ctx, monitor.ChannelPattern())
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Debug("Error closing Redis subscription", zap.Error(err))
		}
	}()

	confirmCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if _, err := pubsub.Receive(confirmCtx); err != nil {
		return false, fmt.Errorf("confirm subscription: %w", err)
	}
	if !s.push(statusMessage(true)) {
		return true, s.ctx.Err()
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-s.ctx.Done():
			return true, s.ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errFeedClosed
			}
			if !s.forward(msg) {
				return true, s.ctx.Err()
			}
		}
	}
}

// forward pushes a published snapshot if the client follows its topic.
func (s *wsSession) forward(msg *redis.Message) bool {
	topic := monitor.TopicOf(msg.Channel)
	if topic == "" || !s.topics.has(topic) {
		return true
	}
	var snap monitor.Snapshot
	if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
		s.logger.Error("Failed to parse snapshot message",
			zap.String("channel", msg.Channel),
			zap.Error(err))
		return true
	}
	return s.push(updateMessage(topic, snap))
}

func (s *wsSession) ping() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				s.logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// write sends queued messages. After a write error it keeps draining so producers never block.
func (s *wsSession) write() {
	for msg := range s.send {
		if err := s.conn.WriteJSON(msg); err != nil {
			s.logger.Debug("Failed to write WebSocket message", zap.Error(err))
			s.cancel()
			for range s.send {
			}
			return
		}
	}
}

// read applies subscription requests until the connection closes.
func (s *wsSession) read() {
	extend := func() error { return s.conn.SetReadDeadline(time.Now().Add(readTimeout)) }
	if err := extend(); err != nil {
		s.logger.Error("Failed to set read deadline", zap.Error(err))
		return
	}
	s.conn.SetPongHandler(func(string) error { return extend() })

	for s.ctx.Err() == nil {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if err := extend(); err != nil {
			s.logger.Error("Failed to reset read deadline", zap.Error(err))
			return
		}

		for _, reply := range s.c.handleClientMessage(msg, s.topics) {
			if !s.push(reply) {
				return
			}
		}
	}
}

// handleClientMessage applies a subscription request and returns the replies to send.
func (c *Controller) handleClientMessage(msg ClientMessage, topics topicSet) []ServerMessage {
	switch msg.Action {
	case "subscribe", "unsubscribe":
	default:
		return []ServerMessage{errorMessage("unknown action: " + msg.Action)}
	}
	if msg.Topic == "" {
		return []ServerMessage{errorMessage("topic is required")}
	}
	if !knownTopics[msg.Topic] {
		return []ServerMessage{errorMessage("unknown topic: " + msg.Topic)}
	}

	if msg.Action == "unsubscribe" {
		topics.remove(msg.Topic)
		return []ServerMessage{{Type: "unsubscribed", Payload: map[string]string{"topic": msg.Topic}}}
	}

	topics.add(msg.Topic)
	replies := []ServerMessage{{Type: "subscribed", Payload: map[string]string{"topic": msg.Topic}}}
	for _, snap := range c.App.Monitor.Snapshots() {
		if msg.Topic == monitor.TopicAll || snap.Topic == msg.Topic {
			replies = append(replies, updateMessage(snap.Topic, snap))
		}
	}
	return replies
}

func updateMessage(topic string, snap monitor.Snapshot) ServerMessage {
	return ServerMessage{Type: topic + ".updated", Payload: snap.Data}
}

func statusMessage(live bool) ServerMessage {
	return ServerMessage{Type: "status", Payload: map[string]bool{"live": live}}
}

func errorMessage(message string) ServerMessage {
	return ServerMessage{Type: "error", Payload: map[string]string{"message": message}}
}
