package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"relaychat/internal/chat/service"
	"relaychat/internal/chat/service/mocks"
	"relaychat/internal/config"
	"relaychat/internal/dbmysql"
	"relaychat/internal/presence"
)

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, repo service.ChatRepository, blobs service.BlobStore) (*httptest.Server, *presence.Registry) {
	registry := presence.NewRegistry()
	cfg := config.LoadConfig()
	svc := service.NewDeliveryService(repo, blobs, registry, cfg)
	relay := NewRelayHandler(svc, registry, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", relay.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsFrame{Event: event, Data: payload}))
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func readAck(t *testing.T, conn *websocket.Conn) service.Ack {
	frame := readFrame(t, conn)
	require.Equal(t, service.EventAck, frame.Event)
	var ack service.Ack
	require.NoError(t, json.Unmarshal(frame.Data, &ack))
	return ack
}

func announce(t *testing.T, conn *websocket.Conn, identity string) {
	sendFrame(t, conn, service.EventAnnounceIdentity, map[string]string{"identity": identity})
	ack := readAck(t, conn)
	require.True(t, ack.Success)
}

func TestAnnounceIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv, registry := newTestServer(t, mocks.NewMockChatRepository(ctrl), mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)

	announce(t, conn, "a@x.com")
	assert.True(t, registry.IsOnline("a@x.com"))
	assert.False(t, registry.IsOnline("b@x.com"))
}

func TestSendText_DeferredWhenRecipientOffline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockChatRepository(ctrl)
	repo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, msg *dbmysql.ChatMessage) error {
			assert.Equal(t, "a@x.com", msg.SentBy)
			assert.Equal(t, "b@x.com", msg.SentTo)
			assert.Equal(t, "hi", msg.Body)
			assert.Equal(t, dbmysql.StatusPending, msg.DeliveryStatus)
			return nil
		}).
		Times(1)

	srv, _ := newTestServer(t, repo, mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)
	announce(t, conn, "a@x.com")

	sendFrame(t, conn, service.EventSendText, service.Envelope{
		SentBy: "a@x.com",
		SentTo: "b@x.com",
		Body:   "hi",
	})

	ack := readAck(t, conn)
	assert.True(t, ack.Success)
	assert.Equal(t, "deferred", ack.Message)
}

func TestSendText_PushedToOnlineRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockChatRepository(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	srv, _ := newTestServer(t, repo, mocks.NewMockBlobStore(ctrl))

	sender := dial(t, srv)
	recipient := dial(t, srv)
	announce(t, sender, "a@x.com")
	announce(t, recipient, "b@x.com")

	sendFrame(t, sender, service.EventSendText, service.Envelope{
		SentBy: "a@x.com",
		SentTo: "b@x.com",
		Body:   "hi",
	})

	ack := readAck(t, sender)
	require.True(t, ack.Success)
	assert.Equal(t, "delivered", ack.Message)

	push := readFrame(t, recipient)
	assert.Equal(t, service.EventSendText, push.Event)

	var record dbmysql.ChatMessage
	require.NoError(t, json.Unmarshal(push.Data, &record))
	assert.Equal(t, "a@x.com", record.SentBy)
	assert.Equal(t, "b@x.com", record.SentTo)
	assert.Equal(t, "hi", record.Body)
	assert.Equal(t, dbmysql.StatusDelivered, record.DeliveryStatus)
	assert.Equal(t, ack.Record.ID, record.ID, "push must carry the persisted record")
}

func TestSendImage_StoresBlob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockChatRepository(ctrl)
	blobs := mocks.NewMockBlobStore(ctrl)
	blobs.EXPECT().
		Write(gomock.Any(), "msg-1.jpg", "image", "a@x.com", []byte("pixels")).
		Return("6613f0c2ab1e", nil).
		Times(1)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	srv, _ := newTestServer(t, repo, blobs)
	conn := dial(t, srv)
	announce(t, conn, "a@x.com")

	sendFrame(t, conn, service.EventSendImage, service.Envelope{
		ID:      "msg-1",
		SentBy:  "a@x.com",
		SentTo:  "b@x.com",
		Payload: base64.StdEncoding.EncodeToString([]byte("pixels")),
	})

	ack := readAck(t, conn)
	require.True(t, ack.Success)
	assert.Equal(t, "6613f0c2ab1e", ack.Record.Body, "ack record carries the blob reference")
}

func TestEventsBeforeAnnouncementAreAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockChatRepository(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	srv, _ := newTestServer(t, repo, mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)

	// No announce: sentBy comes from the envelope, not the registry.
	sendFrame(t, conn, service.EventSendText, service.Envelope{
		SentBy: "a@x.com",
		SentTo: "b@x.com",
		Body:   "hi",
	})

	ack := readAck(t, conn)
	assert.True(t, ack.Success)
	assert.Equal(t, "deferred", ack.Message)
}

func TestUnknownEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv, _ := newTestServer(t, mocks.NewMockChatRepository(ctrl), mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)

	sendFrame(t, conn, "bogus-event", map[string]string{})

	ack := readAck(t, conn)
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Message, "unknown event")
}

func TestMalformedFrame(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv, _ := newTestServer(t, mocks.NewMockChatRepository(ctrl), mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json at all")))

	ack := readAck(t, conn)
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Message, "malformed frame")
}

func TestDisconnectRemovesPresence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv, registry := newTestServer(t, mocks.NewMockChatRepository(ctrl), mocks.NewMockBlobStore(ctrl))
	conn := dial(t, srv)
	announce(t, conn, "a@x.com")
	require.True(t, registry.IsOnline("a@x.com"))

	conn.Close()

	require.Eventually(t, func() bool {
		return !registry.IsOnline("a@x.com")
	}, 2*time.Second, 10*time.Millisecond, "disconnect must clear presence")
}

func TestReconnectSurvivesStaleDisconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockChatRepository(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	srv, registry := newTestServer(t, repo, mocks.NewMockBlobStore(ctrl))

	first := dial(t, srv)
	announce(t, first, "b@x.com")

	second := dial(t, srv)
	announce(t, second, "b@x.com")

	// The old connection drops after the re-announce; the new binding
	// must survive its disconnect cleanup.
	first.Close()
	time.Sleep(100 * time.Millisecond)

	assert.True(t, registry.IsOnline("b@x.com"))

	sender := dial(t, srv)
	announce(t, sender, "a@x.com")
	sendFrame(t, sender, service.EventSendText, service.Envelope{
		SentBy: "a@x.com",
		SentTo: "b@x.com",
		Body:   "still here?",
	})

	ack := readAck(t, sender)
	require.True(t, ack.Success)
	assert.Equal(t, "delivered", ack.Message)

	push := readFrame(t, second)
	assert.Equal(t, service.EventSendText, push.Event)
}
