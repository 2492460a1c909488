package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

func dialFeed(t *testing.T, h *HTTPHandler, hub *ws.Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestBroadcasterForward(t *testing.T) {
	h, svc, hub := newTestHandler(staticSource{records: sampleRecords()})
	conn := dialFeed(t, h, hub)

	b := NewBroadcaster(nil, svc, hub, "", zerolog.Nop())
	b.forward(context.Background(), "not json")

	data, err := json.Marshal(Update{Category: "science", Name: "dee", Score: 33.33, RecordedAt: t0})
	require.NoError(t, err)
	b.forward(context.Background(), string(data))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeLeaderboardUpdate, msg.Type)

	var payload ws.LeaderboardUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "science", payload.Category, "the malformed payload must not have been sent")
	assert.Equal(t, 33.33, payload.Entry.Score)
}

func TestBroadcasterRunWithoutRedis(t *testing.T) {
	_, svc, hub := newTestHandler(staticSource{})
	b := NewBroadcaster(nil, svc, hub, "", zerolog.Nop())
	assert.NoError(t, b.Run(context.Background()))
}
