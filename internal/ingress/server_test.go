package ingress

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/followspot/followspot/internal/sensorstate"
)

func newTestServer(t *testing.T) (*httptest.Server, *sensorstate.Store) {
	t.Helper()
	store := sensorstate.New([]string{"1", "2", "3", "4"}, 256)
	srv := New(store)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, store
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + ts.URL[len("http"):]
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestServer_ValidFrameAppendsSample(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)
	ctx := context.Background()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"sensorId": 1, "value": 42.5}`)))

	require.Eventually(t, func() bool {
		return store.BufferLen("1") == 1
	}, time.Second, 10*time.Millisecond)
}

// S5 Bad frame scenario: ingress receives malformed JSON; server replies
// with {"error": "Invalid JSON format"}; connection stays open; no
// buffer mutation.
func TestServer_BadFrame_S5Scenario(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)
	ctx := context.Background()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{bad json`)))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var reply errorReply
	require.NoError(t, json.Unmarshal(data, &reply))
	assert.Equal(t, "Invalid JSON format", reply.Error)

	// connection must remain usable
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"sensorId": 2, "value": 1}`)))
	require.Eventually(t, func() bool {
		return store.BufferLen("2") == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, store.BufferLen("1"))
}

func TestServer_UnknownSensorID_RepliesErrorWithoutMutation(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)
	ctx := context.Background()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"sensorId": 99, "value": 1}`)))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var reply errorReply
	require.NoError(t, json.Unmarshal(data, &reply))
	assert.Equal(t, "unknown sensorId", reply.Error)
	assert.Equal(t, 0, store.BufferLen("99"))
}
