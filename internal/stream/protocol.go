package stream

import (
	"encoding/json"
	"fmt"
)

// Message types on the wire.
const (
	TypeHello   = "hello"
	TypeFrame   = "frame"
	TypeGrab    = "grab"
	TypeDrag    = "drag"
	TypeRelease = "release"
)

// Hello is sent once per connection with the mesh topology.
type Hello struct {
	Type  string   `json:"type"`
	N     int      `json:"n"`
	Faces [][3]int `json:"faces"`
}

// Frame carries the vertex buffers of one simulated frame.
type Frame struct {
	Type      string    `json:"type"`
	Frame     int       `json:"frame"`
	Time      float64   `json:"time"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
}

// Command is pointer input sent by a client. X, Y are pick coordinates for
// grab; DX, DY are pixel deltas for drag.
type Command struct {
	Type string  `json:"type"`
	X    int     `json:"x,omitempty"`
	Y    int     `json:"y,omitempty"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
}

func DecodeCommand(b []byte) (Command, error) {
	if len(b) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	var c Command
	if err := json.Unmarshal(b, &c); err != nil {
		return Command{}, err
	}
	switch c.Type {
	case TypeGrab, TypeDrag, TypeRelease:
		return c, nil
	default:
		return Command{}, fmt.Errorf("unknown command type %q", c.Type)
	}
}
