package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	written  chan struct{}
	release  chan struct{}
	closed   bool
}

func newFakeWriter(err error) *fakeWriter {
	return &fakeWriter{err: err, written: make(chan struct{}, 8)}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.release != nil {
		<-w.release
	}
	w.mu.Lock()
	w.messages = append(w.messages, msgs...)
	w.mu.Unlock()
	w.written <- struct{}{}
	return w.err
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func waitWrite(t *testing.T, w *fakeWriter) {
	t.Helper()
	select {
	case <-w.written:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not written")
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := newFakeWriter(nil)
	p := NewKafkaPublisher(w)

	p.Publish(context.Background(), Event{Type: PostLiked, ActorID: "u-1", PostID: "p-1"})
	waitWrite(t, w)

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("u-1"), w.messages[0].Key)

	var got Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &got))
	assert.Equal(t, PostLiked, got.Type)
	assert.Equal(t, "p-1", got.PostID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestKafkaPublisher_WriteErrorIsSwallowed(t *testing.T) {
	w := newFakeWriter(errors.New("broker down"))
	p := NewKafkaPublisher(w)

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: UserFollowed, ActorID: "u-1", TargetID: "u-2"})
		waitWrite(t, w)
	})
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := newFakeWriter(nil)

	require.NoError(t, NewKafkaPublisher(w).Close())
	assert.True(t, w.isClosed())
}

func TestKafkaPublisher_CloseDrainsInFlight(t *testing.T) {
	w := newFakeWriter(nil)
	w.release = make(chan struct{})
	p := NewKafkaPublisher(w)

	p.Publish(context.Background(), Event{Type: CommentCreated, ActorID: "u-1"})

	done := make(chan error, 1)
	go func() { done <- p.Close() }()

	select {
	case <-done:
		t.Fatal("Close returned before the pending write finished")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, w.isClosed())

	close(w.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.messages, 1)
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishAfterClose(t *testing.T) {
	w := newFakeWriter(nil)
	p := NewKafkaPublisher(w)
	require.NoError(t, p.Close())

	p.Publish(context.Background(), Event{Type: PostCreated, ActorID: "u-1"})

	select {
	case <-w.written:
		t.Fatal("event written after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewPublisher_NopWithoutWriter(t *testing.T) {
	p := NewPublisher(nil)

	assert.IsType(t, NopPublisher{}, p)
	assert.NotPanics(t, func() { p.Publish(context.Background(), Event{Type: PostCreated}) })
	assert.NoError(t, p.Close())
}

func TestNewWriter_Unconfigured(t *testing.T) {
	assert.Nil(t, NewWriter("", "topic", 1))
	assert.Nil(t, NewWriter("localhost:9092", "", 1))
}

func TestNewWriter_UnreachableBroker(t *testing.T) {
	done := make(chan *kafka.Writer, 1)
	go func() { done <- NewWriter("127.0.0.1:1", "activity", 1) }()

	select {
	case w := <-done:
		require.NotNil(t, w)
		assert.Equal(t, "activity", w.Topic)
	case <-time.After(topicSetupTimeout + 2*time.Second):
		t.Fatal("NewWriter blocked on an unreachable broker")
	}
}
