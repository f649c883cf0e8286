package spectate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMazeBuilt(t *testing.T) game.MazeBuilt {
	t.Helper()
	m, err := maze.Parse(
		"...",
		".#.",
		"...",
	)
	require.NoError(t, err)
	return game.MazeBuilt{
		Level:        2,
		Maze:         m,
		Layout:       maze.NewLayout(m, 64),
		Collectibles: []game.CollectibleState{{ID: 1, Tile: maze.Tile{Col: 2, Row: 2}}},
		Countdown:    135,
	}
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecFor(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			raw, err := codec.Encode(Frame{Seq: 3, Session: "s", Kind: "maze_built", Data: payload(testMazeBuilt(t))})
			require.NoError(t, err)

			var f Frame
			require.NoError(t, codec.Decode(raw, &f))
			assert.Equal(t, uint64(3), f.Seq)
			assert.Equal(t, "s", f.Session)
			assert.Equal(t, "maze_built", f.Kind)

			data, ok := f.Data.(map[string]any)
			require.True(t, ok, "data decodes as %T", f.Data)
			assert.Equal(t, []any{"...", ".#.", "..."}, data["grid"])
			assert.EqualValues(t, 135, data["countdown"])
		})
	}

	_, err := CodecFor("xml")
	assert.Error(t, err)

	c, err := CodecFor("")
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, c.MessageType())
}

func TestPayload(t *testing.T) {
	over := payload(game.GameOver{Level: 4, HighScore: 6, Reason: game.EndTimeout})
	assert.Equal(t, gameOverPayload{Level: 4, HighScore: 6, Reason: "Timeout"}, over)

	assert.Nil(t, payload(game.Paused{}))
	assert.Equal(t, game.HazardExpired{Serial: 2}, payload(game.HazardExpired{Serial: 2}))
}

func TestPublishDropsSlowClients(t *testing.T) {
	h := NewHub(Options{QueueSize: 2})
	slow := &client{id: "slow", send: make(chan Frame, 2)}
	h.add(slow)

	h.Publish("a", nil)
	h.Publish("b", nil)
	assert.Equal(t, 1, h.Clients())

	h.Publish("c", nil)
	assert.Zero(t, h.Clients())

	var kinds []string
	for f := range slow.send {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []string{"a", "b"}, kinds)
}

func TestHTTPRoutes(t *testing.T) {
	h := NewHub(Options{})
	h.OnEvent(game.GameOver{Level: 7, HighScore: 7, NewHighScore: true, Reason: game.EndHit})

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/highscore", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"high_score": 7}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?codec=xml", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpectatorReceivesEvents(t *testing.T) {
	h := NewHub(Options{})
	h.SetSession("session-1")
	srv := httptest.NewServer(h.Router())
	defer srv.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.OnEvent(game.CollectibleCollected{ID: 2, Found: 1, Total: 5})
	h.OnEvent(game.PlaySound{Name: game.SoundCollect})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []Frame
	for range 2 {
		mt, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, mt)

		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		got = append(got, f)
	}

	assert.Equal(t, "collectible_collected", got[0].Kind)
	assert.Equal(t, "session-1", got[0].Session)
	assert.Equal(t, map[string]any{"ID": 2.0, "Found": 1.0, "Total": 5.0}, got[0].Data)
	assert.Equal(t, "play_sound", got[1].Kind)
	assert.Equal(t, got[0].Seq+1, got[1].Seq)

	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}
