// Package html renders HTML include tags for cached library files.
package html

import (
	"errors"
	"fmt"
	"html"
	"io"
	"path"
	"strings"

	"go.trai.ch/cdnloader/internal/core/domain"
	"go.trai.ch/cdnloader/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TagRenderer = (*Renderer)(nil)

// Renderer writes <script> tags for JavaScript and <link> tags for CSS sources.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes one tag per source, each on its own line.
// All sources are validated before anything is written.
func (r *Renderer) Render(w io.Writer, sources []string) error {
	tags := make([]string, 0, len(sources))
	for _, src := range sources {
		tag, err := Tag(src)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	for _, tag := range tags {
		if _, err := io.WriteString(w, tag+"\n"); err != nil {
			return zerr.Wrap(err, "failed to write tag")
		}
	}
	return nil
}

// Tag returns the include tag for a single source.
func Tag(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", domain.ErrInvalidSource
	}

	escaped := html.EscapeString(src)
	clean := sourcePath(src)
	ext, _ := domain.LinkableExt(clean)

	switch ext {
	case domain.ScriptExt:
		return fmt.Sprintf(`<script type="text/javascript" src="%s"></script>`, escaped), nil
	case domain.StylesheetExt:
		return fmt.Sprintf(`<link rel="stylesheet" type="text/css" href="%s">`, escaped), nil
	default:
		err := zerr.With(zerr.New("source cannot be linked"), "type", strings.TrimPrefix(path.Ext(clean), "."))
		return "", errors.Join(domain.ErrUnsupportedType, zerr.With(err, "source", src))
	}
}

// sourcePath strips a query string or fragment so the extension can be inspected.
func sourcePath(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		return src[:i]
	}
	return src
}
