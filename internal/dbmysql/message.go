package dbmysql

import (
	"time"
)

// MessageKind discriminates the payload carried in Body
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindAudio MessageKind = "audio"
)

func (k MessageKind) IsValid() bool {
	return k == KindText || k == KindImage || k == KindAudio
}

// Delivery status observed at send time. Records are append-only so the
// value is never updated afterwards; a pending message is fetched through
// the history query on the recipient's next connect.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
)

// ChatMessage is one persisted chat record. For image/audio kinds Body
// holds the blob store reference, not the raw bytes.
type ChatMessage struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	Body           string      `gorm:"type:text;not null" json:"body"`
	SentBy         string      `gorm:"size:255;not null;index:idx_pair" json:"sentBy"`
	SentTo         string      `gorm:"size:255;not null;index:idx_pair" json:"sentTo"`
	Kind           MessageKind `gorm:"size:16;not null" json:"kind"`
	SentAt         time.Time   `gorm:"index;not null" json:"timestamp"`
	DeliveryStatus string      `gorm:"size:16;not null" json:"deliveryStatus"`
	CreatedAt      time.Time   `json:"-"`
}

func (ChatMessage) TableName() string {
	return "chattings"
}
