package service

import (
	"relaychat/internal/dbmysql"
)

// Wire event names, shared by inbound dispatch and outbound pushes. A
// delivered message is pushed to the recipient under the same event name
// it arrived with.
const (
	EventAnnounceIdentity = "announce-identity"
	EventSendText         = "send-text"
	EventSendImage        = "send-image"
	EventSendAudio        = "send-audio"
	EventAck              = "ack"
)

// Envelope is the inbound message frame. SentBy and SentTo are always
// explicit; they are never inferred from the connection's announced
// identity.
type Envelope struct {
	ID        string              `json:"id,omitempty"`
	SentBy    string              `json:"sentBy"`
	SentTo    string              `json:"sentTo"`
	Body      string              `json:"body,omitempty"`    // text kinds
	Payload   string              `json:"payload,omitempty"` // base64, image/audio kinds
	Timestamp string              `json:"timestamp,omitempty"`
	Kind      dbmysql.MessageKind `json:"kind,omitempty"`
}

// Ack is the one result returned to the sender for every inbound message,
// success or not.
type Ack struct {
	ID      string               `json:"id,omitempty"`
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Record  *dbmysql.ChatMessage `json:"record,omitempty"`
}

// EventForKind maps a message kind to its wire event name.
func EventForKind(kind dbmysql.MessageKind) string {
	switch kind {
	case dbmysql.KindImage:
		return EventSendImage
	case dbmysql.KindAudio:
		return EventSendAudio
	default:
		return EventSendText
	}
}
