package progrock

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/vito/progrock"
	"go.trai.ch/cdnloader/internal/ui/output"
	"go.trai.ch/cdnloader/internal/ui/style"
)

var _ progrock.Writer = (*Printer)(nil)

// Printer is a progrock.Writer that prints one line per finished vertex.
// Output written to a vertex is buffered and printed indented below that line.
// A Printer without a destination drops every update.
type Printer struct {
	mu   sync.Mutex
	out  *termenv.Output
	logs map[string]*strings.Builder
	done map[string]struct{}
}

// NewPrinter creates a Printer that writes nowhere until Stream is called.
func NewPrinter() *Printer {
	return &Printer{
		logs: make(map[string]*strings.Builder),
		done: make(map[string]struct{}),
	}
}

// Stream directs progress lines to w. A nil writer disables printing.
func (p *Printer) Stream(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w == nil {
		p.out = nil
		return
	}
	p.out = output.New(w)
}

// Streaming reports whether the Printer has a destination.
func (p *Printer) Streaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out != nil
}

// WriteStatus implements progrock.Writer.
func (p *Printer) WriteStatus(status *progrock.StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil {
		return nil
	}

	for _, l := range status.GetLogs() {
		b, ok := p.logs[l.GetVertex()]
		if !ok {
			b = &strings.Builder{}
			p.logs[l.GetVertex()] = b
		}
		b.Write(l.GetData())
	}

	for _, v := range status.GetVertexes() {
		if v.GetCompleted() == nil {
			continue
		}
		if _, ok := p.done[v.GetId()]; ok {
			continue
		}
		p.done[v.GetId()] = struct{}{}

		if err := p.printVertex(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printVertex(v *progrock.Vertex) error {
	var line string
	switch {
	case v.GetError() != "":
		line = fmt.Sprintf("%s %s: %s", output.Paint(p.out, style.Cross, style.Red), v.GetName(), v.GetError())
	case v.GetCanceled():
		line = fmt.Sprintf("%s %s %s", output.Paint(p.out, style.Warning, style.Yellow), v.GetName(), output.Paint(p.out, "canceled", style.Slate))
	case v.GetCached():
		line = fmt.Sprintf("%s %s %s", output.Paint(p.out, style.Dot, style.Blue), v.GetName(), output.Paint(p.out, "cached", style.Slate))
	default:
		line = fmt.Sprintf("%s %s", output.Paint(p.out, style.Check, style.Green), v.GetName())
	}
	if _, err := fmt.Fprintln(p.out, line); err != nil {
		return err
	}

	b, ok := p.logs[v.GetId()]
	if !ok {
		return nil
	}
	delete(p.logs, v.GetId())
	for _, l := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		if _, err := fmt.Fprintf(p.out, "  %s\n", output.Paint(p.out, l, style.Slate)); err != nil {
			return err
		}
	}
	return nil
}

// Summarize prints the totals tracked by tape.
func (p *Printer) Summarize(tape *progrock.Tape) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil || tape.TotalCount() == 0 {
		return nil
	}
	_, err := fmt.Fprintf(p.out, "%d completed, %d cached, %d failed\n",
		tape.CompletedCount(), tape.CachedCount(), tape.ErroredCount())
	return err
}

// Close implements progrock.Writer.
func (p *Printer) Close() error {
	return nil
}
