package render

import (
	"errors"
)

// ErrNoSurface is reported by a renderer that lost its draw target. The
// frame driver treats it as fatal.
var ErrNoSurface = errors.New("render: no draw surface")

// DrawCall is the opaque draw request the core issues once per frame.
type DrawCall struct {
	Shader string
	Input  string
	Count  int
}

type Renderer interface {
	Draw(call DrawCall, mesh *Mesh) error
}

// Recorder is a headless renderer that keeps the issued draw calls.
type Recorder struct {
	Calls []DrawCall
	// Fail, when set, is returned from every Draw.
	Fail error
}

func (r *Recorder) Draw(call DrawCall, mesh *Mesh) error {
	if r.Fail != nil {
		return r.Fail
	}
	if mesh == nil {
		return ErrNoSurface
	}
	r.Calls = append(r.Calls, call)
	return nil
}
