package spectate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
	"github.com/vmihailenco/msgpack/v5"
)

// Frame is one message on the spectator feed.
type Frame struct {
	Seq     uint64 `json:"seq" msgpack:"seq"`
	Session string `json:"session" msgpack:"session"`
	Kind    string `json:"kind" msgpack:"kind"`
	Data    any    `json:"data,omitempty" msgpack:"data,omitempty"`
}

// mazePayload replaces MazeBuilt's maze pointer with printable rows.
type mazePayload struct {
	Level        int                     `json:"level" msgpack:"level"`
	Cols         int                     `json:"cols" msgpack:"cols"`
	Rows         int                     `json:"rows" msgpack:"rows"`
	Grid         []string                `json:"grid" msgpack:"grid"`
	TileSize     float64                 `json:"tile_size" msgpack:"tile_size"`
	Start        maze.Tile               `json:"start" msgpack:"start"`
	Collectibles []game.CollectibleState `json:"collectibles" msgpack:"collectibles"`
	Countdown    float64                 `json:"countdown" msgpack:"countdown"`
}

type gameOverPayload struct {
	Level        int    `json:"level" msgpack:"level"`
	HighScore    int    `json:"high_score" msgpack:"high_score"`
	NewHighScore bool   `json:"new_high_score" msgpack:"new_high_score"`
	Reason       string `json:"reason" msgpack:"reason"`
}

// payload returns the wire form of an event.
func payload(e game.Event) any {
	switch e := e.(type) {
	case game.MazeBuilt:
		return mazePayload{
			Level:        e.Level,
			Cols:         e.Maze.Cols(),
			Rows:         e.Maze.Rows(),
			Grid:         strings.Split(e.Maze.String(), "\n"),
			TileSize:     e.Layout.TileSize,
			Start:        e.Start,
			Collectibles: e.Collectibles,
			Countdown:    e.Countdown,
		}
	case game.GameOver:
		return gameOverPayload{
			Level:        e.Level,
			HighScore:    e.HighScore,
			NewHighScore: e.NewHighScore,
			Reason:       e.Reason.String(),
		}
	case game.Paused, game.Resumed:
		return nil
	}
	return e
}

// Codec encodes frames for one wire format.
type Codec interface {
	Name() string
	Encode(Frame) ([]byte, error)
	Decode([]byte, *Frame) error
	// MessageType is the websocket message type frames are sent as.
	MessageType() int
}

type jsonCodec struct{}

func (jsonCodec) Name() string                    { return "json" }
func (jsonCodec) Encode(f Frame) ([]byte, error)  { return json.Marshal(f) }
func (jsonCodec) Decode(b []byte, f *Frame) error { return json.Unmarshal(b, f) }
func (jsonCodec) MessageType() int                { return websocket.TextMessage }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                    { return "msgpack" }
func (msgpackCodec) Encode(f Frame) ([]byte, error)  { return msgpack.Marshal(f) }
func (msgpackCodec) Decode(b []byte, f *Frame) error { return msgpack.Unmarshal(b, f) }
func (msgpackCodec) MessageType() int                { return websocket.BinaryMessage }

// CodecFor returns the codec registered under name. An empty name selects JSON.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
