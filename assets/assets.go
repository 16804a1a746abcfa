// Package assets loads the static files a rendered document uses: the page
// background and the regular and bold typefaces.
//
// Every asset is optional. A missing or undecodable file is logged at warn
// level and left empty in the Bundle; callers draw without it.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Logical asset names, looked up in the asset directory.
const (
	BackgroundName  = "background_maia.png"
	RegularFontName = "Montserrat-Regular.ttf"
	BoldFontName    = "Montserrat-Bold.ttf"
)

// DefaultBackgroundWidth is the pixel width the background is resampled to:
// A4 at roughly 150 dpi.
const DefaultBackgroundWidth = 1240

// Bundle is the immutable set of loaded assets shared by all requests.
type Bundle struct {
	Background image.Image // resampled to the page aspect ratio; nil when absent
	Regular    []byte      // TTF/OTF data; nil when absent
	Bold       []byte
	Missing    []string // logical names that could not be loaded
}

// HasBackground reports whether a background image is available.
func (b *Bundle) HasBackground() bool { return b != nil && b.Background != nil }

// Options configure how the store prepares assets.
type Options struct {
	// PageWidth and PageHeight give the aspect ratio the background is
	// resampled to. Zero keeps the source aspect ratio.
	PageWidth  float64
	PageHeight float64
	// BackgroundWidth caps the resampled pixel width.
	BackgroundWidth int
	Logger          *log.Logger
}

// Store reads assets from a filesystem once and hands out the cached Bundle.
type Store struct {
	fsys fs.FS
	opts Options

	once   sync.Once
	bundle *Bundle
}

// NewStore creates a store over fsys, usually os.DirFS of the asset directory.
// A nil fsys yields an empty bundle.
func NewStore(fsys fs.FS, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.BackgroundWidth <= 0 {
		opts.BackgroundWidth = DefaultBackgroundWidth
	}
	return &Store{fsys: fsys, opts: opts}
}

// Bundle loads the assets on first use and returns the same bundle afterwards.
// Loading is detached from ctx cancellation so an aborted first request
// cannot leave the process without assets.
func (s *Store) Bundle(ctx context.Context) *Bundle {
	s.once.Do(func() {
		s.bundle = s.load(context.WithoutCancel(ctx))
	})
	return s.bundle
}

func (s *Store) load(ctx context.Context) *Bundle {
	logger := s.opts.Logger
	b := &Bundle{}
	if s.fsys == nil {
		b.Missing = []string{BackgroundName, RegularFontName, BoldFontName}
		logger.Warn("no asset directory configured, rendering with defaults")
		return b
	}

	var mu sync.Mutex
	missing := func(name string, err error) {
		logger.Warn("asset unavailable", "name", name, "err", err)
		mu.Lock()
		b.Missing = append(b.Missing, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := s.loadBackground()
		if err != nil {
			missing(BackgroundName, err)
			return nil
		}
		b.Background = img
		return gctx.Err()
	})
	g.Go(func() error {
		data, err := readNonEmpty(s.fsys, RegularFontName)
		if err != nil {
			missing(RegularFontName, err)
			return nil
		}
		b.Regular = data
		return gctx.Err()
	})
	g.Go(func() error {
		data, err := readNonEmpty(s.fsys, BoldFontName)
		if err != nil {
			missing(BoldFontName, err)
			return nil
		}
		b.Bold = data
		return gctx.Err()
	})
	_ = g.Wait()
	slices.Sort(b.Missing)

	logger.Debug("assets loaded", "background", b.HasBackground(),
		"regular", len(b.Regular) > 0, "bold", len(b.Bold) > 0)
	return b
}

func (s *Store) loadBackground() (image.Image, error) {
	data, err := readNonEmpty(s.fsys, BackgroundName)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", BackgroundName, err)
	}
	return Resample(src, s.opts.PageWidth, s.opts.PageHeight, s.opts.BackgroundWidth), nil
}

// Resample scales src to at most maxWidth pixels wide with the aspect ratio
// of a pageWidth x pageHeight page, stretching as a full-bleed background does.
func Resample(src image.Image, pageWidth, pageHeight float64, maxWidth int) image.Image {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return src
	}
	w := min(sb.Dx(), maxWidth)
	if w <= 0 {
		w = sb.Dx()
	}
	var h int
	if pageWidth > 0 && pageHeight > 0 {
		h = int(float64(w)*pageHeight/pageWidth + 0.5)
	} else {
		h = int(float64(w)*float64(sb.Dy())/float64(sb.Dx()) + 0.5)
	}
	if w == sb.Dx() && h == sb.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, max(h, 1)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}

func readNonEmpty(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("assets: empty file " + name)
	}
	return data, nil
}
