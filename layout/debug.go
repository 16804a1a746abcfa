package layout

import (
	"encoding/json"
	"io"
)

type debugPage struct {
	Page
	// ContentBottom is the lowest edge of any text box on the page.
	ContentBottom float64 `json:"contentBottom"`
	// Overflow marks pages whose text runs past the page height.
	Overflow bool `json:"overflow,omitempty"`
}

type debugResult struct {
	Meta  DocumentMeta `json:"meta"`
	Stats Stats        `json:"stats"`
	Pages []debugPage  `json:"pages"`
}

// WriteDebugJSON dumps the result as indented JSON with per-page extents,
// for checking where page breaks fell.
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	out := debugResult{Meta: res.Meta, Stats: res.Stats, Pages: make([]debugPage, len(res.Pages))}
	for i, p := range res.Pages {
		dp := debugPage{Page: p}
		for _, tb := range p.Texts {
			dp.ContentBottom = max(dp.ContentBottom, tb.Y+tb.Height)
		}
		dp.Overflow = dp.ContentBottom > p.Height
		out.Pages[i] = dp
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
