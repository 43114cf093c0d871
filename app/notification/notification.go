// Package notification mengirim notifikasi workflow ke satu atau lebih sink.
// Pengiriman bersifat best effort: kegagalan dicatat di log dan tidak
// pernah membatalkan operasi yang sudah di-commit.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository"
	"rps-backend/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink adalah tujuan pengiriman notifikasi.
type Sink interface {
	Name() string
	Send(ctx context.Context, n *model.Notification) error
}

// Notifier dipakai service untuk mengirim notifikasi setelah commit.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, severity string, link *string)
}

// =======================
// INBOX (MongoDB)
// =======================

type inboxSink struct {
	repo repository.NotificationRepository
}

// NewInboxSink menyimpan notifikasi ke inbox user.
func NewInboxSink(repo repository.NotificationRepository) Sink {
	return &inboxSink{repo: repo}
}

func (s *inboxSink) Name() string { return "inbox" }

func (s *inboxSink) Send(ctx context.Context, n *model.Notification) error {
	return s.repo.Insert(ctx, n)
}

// =======================
// REDIS STREAM
// =======================

type streamSink struct {
	client *redis.Client
	stream string
}

// NewStreamSink mem-publish notifikasi ke Redis Stream supaya bisa
// dikonsumsi worker lain (email, push).
func NewStreamSink(client *redis.Client, stream string) Sink {
	return &streamSink{client: client, stream: stream}
}

func (s *streamSink) Name() string { return "redis_stream" }

func (s *streamSink) Send(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data":      string(payload),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// =======================
// DISPATCHER
// =======================

// Dispatcher meneruskan satu notifikasi ke semua sink secara berurutan.
type Dispatcher struct {
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sinks: sinks, logger: logger, now: time.Now}
}

// Notify tidak mengembalikan error. Sink yang gagal hanya dicatat.
func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, title, message, severity string, link *string) {
	n := &model.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Severity:  severity,
		Link:      link,
		CreatedAt: d.now(),
	}
	for _, s := range d.sinks {
		if err := s.Send(ctx, n); err != nil {
			utils.NotificationsFailed.WithLabelValues(s.Name()).Inc()
			d.logger.Warn("notification delivery failed",
				zap.String("sink", s.Name()),
				zap.String("user_id", userID.String()),
				zap.String("title", title),
				zap.Error(err),
			)
		}
	}
}

// Nop mengabaikan semua notifikasi.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, string, string, string, *string) {}
