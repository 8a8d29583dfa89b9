// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

var (
	_ ports.Telemetry = (*Recorder)(nil)
	_ ports.Vertex    = (*vertex)(nil)
)

// Recorder implements the ports.Telemetry interface using the vito/progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts recording a new vertex. Vertices with the same name share a digest.
func (r *Recorder) Record(ctx context.Context, name string, opts ...ports.VertexOption) (context.Context, ports.Vertex) {
	cfg := &ports.VertexConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var vopts []progrock.VertexOpt
	if cfg.Internal {
		vopts = append(vopts, progrock.Internal())
	}

	v := &vertex{VertexRecorder: r.rec.Vertex(digest.FromString(name), name, vopts...)}
	return ports.ContextWithVertex(ctx, v), v
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// vertex exposes a progrock vertex as a ports.Vertex. Stdout, Stderr and
// Cached come straight from the recorder.
type vertex struct {
	*progrock.VertexRecorder
}

// Log writes "level: msg" to the vertex, warnings and errors on stderr.
func (v *vertex) Log(level domain.LogLevel, msg string) {
	_, _ = fmt.Fprintf(v.stream(level), "%s: %s\n", strings.ToLower(level.String()), msg)
}

func (v *vertex) Complete(err error) {
	v.Done(err)
}

func (v *vertex) stream(level domain.LogLevel) io.Writer {
	if level >= domain.LogLevelWarn {
		return v.Stderr()
	}
	return v.Stdout()
}
