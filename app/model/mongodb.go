package model

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Severity notifikasi.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Notification merepresentasikan 1 dokumen di MongoDB (collection: notifications).
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID          `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Severity  string             `bson:"severity" json:"severity"`
	Link      *string            `bson:"link,omitempty" json:"link,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
