package repository

import (
	"context"

	"gorm.io/gorm"

	"relaychat/internal/dbmysql"
)

// ChatRepository is the persisted message log: durable append plus the
// participant-pair history query.
type ChatRepository interface {
	Append(ctx context.Context, msg *dbmysql.ChatMessage) error
	History(ctx context.Context, participantA, participantB string) ([]*dbmysql.ChatMessage, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Append(ctx context.Context, msg *dbmysql.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// History returns every message exchanged between the two participants in
// either direction, ordered by send timestamp ascending. Swapping the
// arguments yields the identical sequence.
func (r *chatRepo) History(ctx context.Context, participantA, participantB string) ([]*dbmysql.ChatMessage, error) {
	var messages []*dbmysql.ChatMessage
	err := r.db.WithContext(ctx).
		Where("(sent_by = ? AND sent_to = ?) OR (sent_by = ? AND sent_to = ?)",
			participantA, participantB, participantB, participantA).
		Order("sent_at ASC").
		Find(&messages).Error
	return messages, err
}
