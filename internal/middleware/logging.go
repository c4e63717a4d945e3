package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"devconnect/internal/events"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type ctxKeyRequestID struct{}

var RequestIDKey = ctxKeyRequestID{}

const RequestIDHeader = "X-Request-Id"

// LogEntry is the access log record shipped to Kafka.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}

// ResponseLogger records the status code written by the wrapped handler.
type ResponseLogger struct {
	w      http.ResponseWriter
	status int
}

func NewResponseLogger(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w, http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	l.status = code
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	return l.w.Write(b)
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogger) Status() int {
	return l.status
}

// RequestIDMiddleware reuses the client's X-Request-Id or generates one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// LoggingMiddleware logs every request and, when kWriter is not nil, ships
// the entry to Kafka in the background.
func LoggingMiddleware(serviceName string, kWriter events.MessageWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := NewResponseLogger(w)

			next.ServeHTTP(lw, r)

			entry := LogEntry{
				Timestamp:  time.Now(),
				IP:         clientIP(r),
				StatusCode: lw.Status(),
				RequestID:  GetRequestID(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Duration:   time.Since(start).Seconds(),
				Service:    serviceName,
			}

			log.WithFields(log.Fields{
				"request_id": entry.RequestID,
				"status":     entry.StatusCode,
				"duration":   entry.Duration,
			}).Infof("[LoggingMiddleware] %s %s", entry.Method, entry.Path)

			if kWriter == nil {
				return
			}

			go shipLogEntry(kWriter, entry)
		})
	}
}

func shipLogEntry(kWriter events.MessageWriter, entry LogEntry) {
	jsonEntry, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("[LoggingMiddleware] failed to marshal log entry for request %s", entry.RequestID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := kWriter.WriteMessages(ctx, kafka.Message{Value: jsonEntry}); err != nil {
		log.Errorf("[LoggingMiddleware] failed to write log to Kafka: %v", err)
		return
	}
	log.Debugf("[LoggingMiddleware] log entry sent to Kafka request_id:%s", entry.RequestID)
}
