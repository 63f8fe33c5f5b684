package service

import (
	"context"
	"encoding/base64"
	"log"
	"time"

	"github.com/google/uuid"

	"relaychat/internal/config"
	"relaychat/internal/dbmysql"
	"relaychat/internal/presence"
)

// BlobStore persists decoded binary payloads and returns the reference
// stored in the chat record.
type BlobStore interface {
	Write(ctx context.Context, filename, kind, senderEmail string, data []byte) (string, error)
}

// Registry resolves the recipient's live connection at routing time.
type Registry interface {
	Lookup(identity string) (presence.Conn, bool)
}

// ChatRepository mirrors repository.ChatRepository; declared here so the
// pipeline depends only on what it calls.
type ChatRepository interface {
	Append(ctx context.Context, msg *dbmysql.ChatMessage) error
	History(ctx context.Context, participantA, participantB string) ([]*dbmysql.ChatMessage, error)
}

// DeliveryService is the per-message pipeline: validate, materialize the
// blob for binary kinds, persist, route to the recipient if online, and
// produce exactly one Ack on every branch.
type DeliveryService interface {
	DeliverText(ctx context.Context, env *Envelope) *Ack
	DeliverImage(ctx context.Context, env *Envelope) *Ack
	DeliverAudio(ctx context.Context, env *Envelope) *Ack
	History(ctx context.Context, me, other string) ([]*dbmysql.ChatMessage, error)
}

type deliveryService struct {
	repo       ChatRepository
	blobs      BlobStore
	registry   Registry
	maxPayload int
}

func NewDeliveryService(repo ChatRepository, blobs BlobStore, registry Registry, cfg *config.Config) DeliveryService {
	return &deliveryService{
		repo:       repo,
		blobs:      blobs,
		registry:   registry,
		maxPayload: cfg.Relay.MaxPayloadBytes,
	}
}

func (s *deliveryService) DeliverText(ctx context.Context, env *Envelope) *Ack {
	env.Kind = dbmysql.KindText

	if err := validateCommon(env); err != nil {
		return failAck(env, err)
	}
	if env.Body == "" {
		return failAck(env, &ValidationError{Reason: "message body cannot be empty"})
	}

	record, err := s.buildRecord(env)
	if err != nil {
		return failAck(env, err)
	}
	record.Body = env.Body

	return s.persistAndRoute(ctx, record)
}

func (s *deliveryService) DeliverImage(ctx context.Context, env *Envelope) *Ack {
	return s.deliverBinary(ctx, env, dbmysql.KindImage)
}

func (s *deliveryService) DeliverAudio(ctx context.Context, env *Envelope) *Ack {
	return s.deliverBinary(ctx, env, dbmysql.KindAudio)
}

func (s *deliveryService) History(ctx context.Context, me, other string) ([]*dbmysql.ChatMessage, error) {
	if me == "" || other == "" {
		return nil, &ValidationError{Reason: "both participants are required"}
	}
	return s.repo.History(ctx, me, other)
}

func (s *deliveryService) deliverBinary(ctx context.Context, env *Envelope, kind dbmysql.MessageKind) *Ack {
	env.Kind = kind

	if err := validateCommon(env); err != nil {
		return failAck(env, err)
	}
	if env.ID == "" {
		return failAck(env, &ValidationError{Reason: "message id is required for binary kinds"})
	}
	if env.Payload == "" {
		return failAck(env, &ValidationError{Reason: "payload cannot be empty"})
	}

	data, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return failAck(env, &ValidationError{Reason: "payload is not valid base64"})
	}
	if len(data) > s.maxPayload {
		return failAck(env, &ValidationError{Reason: "payload exceeds size limit"})
	}

	record, buildErr := s.buildRecord(env)
	if buildErr != nil {
		return failAck(env, buildErr)
	}

	// Blob goes in before the record so a persisted message never points
	// at a missing blob. A write failure aborts the whole delivery.
	ref, err := s.blobs.Write(ctx, record.ID+extensionFor(kind), string(kind), env.SentBy, data)
	if err != nil {
		return failAck(env, &StorageError{Err: err})
	}
	record.Body = ref

	return s.persistAndRoute(ctx, record)
}

// persistAndRoute appends the record and then pushes it to the recipient's
// connection when one is registered. The recipient is resolved once; the
// same handle decides the stored delivery status and receives the push.
func (s *deliveryService) persistAndRoute(ctx context.Context, record *dbmysql.ChatMessage) *Ack {
	conn, online := s.registry.Lookup(record.SentTo)
	if online {
		record.DeliveryStatus = dbmysql.StatusDelivered
	} else {
		record.DeliveryStatus = dbmysql.StatusPending
	}

	if err := s.repo.Append(ctx, record); err != nil {
		return &Ack{
			ID:      record.ID,
			Success: false,
			Message: (&PersistenceError{Err: err}).Error(),
		}
	}

	if !online {
		return &Ack{ID: record.ID, Success: true, Message: "deferred", Record: record}
	}

	// Fire and forget; a failed push only delays delivery until the
	// recipient pulls history on reconnect.
	if err := conn.Push(EventForKind(record.Kind), record); err != nil {
		log.Printf("push to %s failed: %v", record.SentTo, err)
	}

	return &Ack{ID: record.ID, Success: true, Message: "delivered", Record: record}
}

func (s *deliveryService) buildRecord(env *Envelope) (*dbmysql.ChatMessage, error) {
	id := env.ID
	if id == "" {
		id = uuid.NewString()
	}

	sentAt := time.Now().UTC()
	if env.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, env.Timestamp)
		if err != nil {
			return nil, &ValidationError{Reason: "timestamp must be RFC 3339"}
		}
		sentAt = parsed.UTC()
	}

	return &dbmysql.ChatMessage{
		ID:     id,
		SentBy: env.SentBy,
		SentTo: env.SentTo,
		Kind:   env.Kind,
		SentAt: sentAt,
	}, nil
}

func validateCommon(env *Envelope) error {
	if env.SentBy == "" {
		return &ValidationError{Reason: "sentBy is required"}
	}
	if env.SentTo == "" {
		return &ValidationError{Reason: "sentTo is required"}
	}
	return nil
}

func failAck(env *Envelope, err error) *Ack {
	return &Ack{ID: env.ID, Success: false, Message: err.Error()}
}

func extensionFor(kind dbmysql.MessageKind) string {
	switch kind {
	case dbmysql.KindAudio:
		return ".mp3"
	default:
		return ".jpg"
	}
}
