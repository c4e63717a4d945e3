package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type Type string

const (
	PostCreated    Type = "post_created"
	PostLiked      Type = "post_liked"
	PostUnliked    Type = "post_unliked"
	CommentCreated Type = "comment_created"
	CommentReplied Type = "comment_replied"
	UserFollowed   Type = "user_followed"
	UserUnfollowed Type = "user_unfollowed"
)

// Event is an activity record published after a successful write.
type Event struct {
	Type       Type      `json:"type"`
	ActorID    string    `json:"actor_id"`
	PostID     string    `json:"post_id,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers activity events. Publish never blocks the caller
// and never fails the request that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, timeout: 10 * time.Second}
}

func (p *KafkaPublisher) Publish(_ context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		log.Warnf("[events] publisher closed, dropping %s event", event.Type)
		return
	}
	p.inFlight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inFlight.Done()
		p.write(event)
	}()
}

func (p *KafkaPublisher) write(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("[events] failed to marshal %s event: %v", event.Type, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(event.ActorID), Value: payload}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Errorf("[events] failed to write %s event to Kafka: %v", event.Type, err)
		return
	}

	log.Debugf("[events] %s event sent to Kafka actor:%s", event.Type, event.ActorID)
}

// Close stops accepting events, waits for writes in flight and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.inFlight.Wait()
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

func (NopPublisher) Close() error { return nil }
