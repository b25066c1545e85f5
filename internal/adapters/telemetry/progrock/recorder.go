// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"errors"
	"io"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/cdnloader/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry using a progrock recorder.
// Updates are collected on a tape and mirrored to a Printer.
type Recorder struct {
	tape    *progrock.Tape
	printer *Printer
	rec     *progrock.Recorder
}

// New creates a new Recorder with a fresh tape and a silent printer.
func New() *Recorder {
	return NewRecorder(progrock.NewTape(), NewPrinter())
}

// NewRecorder creates a new Recorder writing to tape and printer.
func NewRecorder(tape *progrock.Tape, printer *Printer) *Recorder {
	return &Recorder{
		tape:    tape,
		printer: printer,
		rec:     progrock.NewRecorder(progrock.MultiWriter{tape, printer}),
	}
}

// Stream prints finished vertices to w. A nil writer turns printing off.
func (r *Recorder) Stream(w io.Writer) {
	r.printer.Stream(w)
}

// Record starts recording a new vertex. The vertex digest is derived from its name.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := r.rec.Vertex(digest.FromString(name), name)
	return ctx, &Vertex{vertex: v}
}

// Close closes the session and prints its totals when streaming.
func (r *Recorder) Close() error {
	r.rec.Complete()
	closeErr := r.rec.Close()
	return errors.Join(closeErr, r.printer.Summarize(r.tape))
}
