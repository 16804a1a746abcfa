package renderer

import (
	"io"

	"github.com/dgtlunion/konspekt/layout"
)

// Renderer writes a laid-out document to w as a finalized page stream.
// Render returns only after every page has been written and the stream closed;
// any write failure is returned and the output must be treated as incomplete.
type Renderer interface {
	Render(w io.Writer, result *layout.Result) error
}
