package leaderboard

import (
	"bytes"
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
	"github.com/xuri/excelize/v2"

	"github.com/gokatarajesh/quizboard/internal/highscore"
	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

func newTestHandler(source EntrySource) (*HTTPHandler, *Service, *ws.Hub) {
	svc := NewService(source, zerolog.Nop())
	hub := ws.NewHub(zerolog.Nop())
	return NewHTTPHandler(svc, hub, []string{"*"}, zerolog.Nop()), svc, hub
}

func TestHandleGetReturnsBareArray(t *testing.T) {
	h, _, _ := newTestHandler(staticSource{records: sampleRecords()})

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 4)
	assert.Equal(t, "cy", body[0]["name"])
	assert.Equal(t, 100.0, body[0]["score"])
	assert.Equal(t, "math", body[0]["category"])
	assert.Contains(t, body[0], "recordedAt")
}

func TestHandleGetEmptyStore(t *testing.T) {
	h, _, _ := newTestHandler(staticSource{records: highscore.Records{}})

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleExport(t *testing.T) {
	h, _, _ := newTestHandler(staticSource{records: sampleRecords()})

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/leaderboard/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leaderboard.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestLocalNotifierPushesToWebSocket(t *testing.T) {
	records := sampleRecords()
	h, svc, hub := newTestHandler(staticSource{records: records})
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	notifier := NewLocalNotifier(svc, hub, zerolog.Nop())
	notifier.HighScoreRecorded(context.Background(), "math", highscore.Entry{Name: "cy", Score: 100, RecordedAt: t0})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeLeaderboardUpdate, msg.Type)

	var payload ws.LeaderboardUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "math", payload.Category)
	assert.Equal(t, "cy", payload.Entry.Name)
	require.Len(t, payload.Top, 4)
	assert.Equal(t, 1, payload.Top[0].Rank)
}

func TestWebSocketPingPong(t *testing.T) {
	h, _, _ := newTestHandler(staticSource{records: highscore.Records{}})
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypePong, msg.Type)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/leaderboard/ws", nil)
	assert.True(t, check(req), "non-browser clients send no origin")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}

func TestWebSocketUnsupportedMessage(t *testing.T) {
	h, _, _ := newTestHandler(staticSource{records: highscore.Records{}})
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "subscribe"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeError, msg.Type)

	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, errCodeUnsupportedMessage, payload.Code)
	assert.Contains(t, payload.Message, "subscribe")

	// the connection stays usable
	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypePong, msg.Type)
}
