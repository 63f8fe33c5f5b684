// Package handler is the relay server: it owns the live websocket
// connections, dispatches inbound events into the delivery pipeline, and
// pushes persisted records out to recipients resolved through the
// presence registry.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"relaychat/internal/chat/service"
	"relaychat/internal/config"
	"relaychat/internal/presence"
)

type RelayHandler struct {
	delivery service.DeliveryService
	registry *presence.Registry
	upgrader websocket.Upgrader
	sendBuf  int
}

func NewRelayHandler(delivery service.DeliveryService, registry *presence.Registry, cfg *config.Config) *RelayHandler {
	return &RelayHandler{
		delivery: delivery,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // TODO: restrict to the web client origins before exposing publicly
			},
		},
		sendBuf: cfg.Relay.SendBufferSize,
	}
}

// ServeWS upgrades the request and starts the per-connection goroutines.
func (h *RelayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}

	client := newClient(uuid.NewString(), conn, h.sendBuf)
	log.Printf("client connected: %s", client.id)

	go client.writePump()
	go h.readLoop(client)
}

// readLoop processes inbound events one at a time, in order, until the
// transport drops. Each event runs to completion before the next; a
// disconnect mid-delivery does not cancel the in-flight persistence, the
// undeliverable ack is simply discarded by the closed client.
func (h *RelayHandler) readLoop(c *Client) {
	defer func() {
		h.registry.Remove(c)
		c.close()
		log.Printf("client disconnected: %s", c.id)
	}()

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(c, raw)
	}
}

func (h *RelayHandler) dispatch(c *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.Push(service.EventAck, &service.Ack{Success: false, Message: "malformed frame"})
		return
	}

	switch frame.Event {
	case service.EventAnnounceIdentity:
		h.handleAnnounce(c, frame.Data)

	case service.EventSendText, service.EventSendImage, service.EventSendAudio:
		h.handleSend(c, frame.Event, frame.Data)

	default:
		c.Push(service.EventAck, &service.Ack{Success: false, Message: "unknown event: " + frame.Event})
	}
}

func (h *RelayHandler) handleAnnounce(c *Client, data json.RawMessage) {
	var payload struct {
		Identity string `json:"identity"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Identity == "" {
		c.Push(service.EventAck, &service.Ack{Success: false, Message: "identity is required"})
		return
	}

	h.registry.Announce(payload.Identity, c)
	log.Printf("identity %s announced on %s", payload.Identity, c.id)
	c.Push(service.EventAck, &service.Ack{Success: true, Message: "identity registered"})
}

func (h *RelayHandler) handleSend(c *Client, event string, data json.RawMessage) {
	var env service.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.Push(service.EventAck, &service.Ack{Success: false, Message: "malformed envelope"})
		return
	}

	ctx := context.Background()

	var ack *service.Ack
	switch event {
	case service.EventSendImage:
		ack = h.delivery.DeliverImage(ctx, &env)
	case service.EventSendAudio:
		ack = h.delivery.DeliverAudio(ctx, &env)
	default:
		ack = h.delivery.DeliverText(ctx, &env)
	}

	if err := c.Push(service.EventAck, ack); err != nil {
		log.Printf("ack for %s undeliverable: %v", c.id, err)
	}
}
