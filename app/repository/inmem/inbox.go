package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inbox adalah repository.NotificationRepository di memori.
type Inbox struct {
	mu    sync.Mutex
	items []model.Notification
}

func NewInbox() *Inbox { return &Inbox{} }

func (b *Inbox) Insert(ctx context.Context, n *model.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	b.items = append(b.items, *n)
	return nil
}

func (b *Inbox) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Notification{}
	for _, n := range b.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (b *Inbox) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == oid && b.items[i].UserID == userID {
			b.items[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}
