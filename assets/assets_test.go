package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 240, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreLoadsEverything(t *testing.T) {
	fsys := fstest.MapFS{
		BackgroundName:  {Data: pngBytes(t, 40, 40)},
		RegularFontName: {Data: goregular.TTF},
		BoldFontName:    {Data: goregular.TTF},
	}
	s := NewStore(fsys, Options{PageWidth: 595.28, PageHeight: 841.89})
	b := s.Bundle(context.Background())

	require.True(t, b.HasBackground())
	assert.Empty(t, b.Missing)
	assert.Equal(t, goregular.TTF, b.Regular)
	bounds := b.Background.Bounds()
	assert.Equal(t, 40, bounds.Dx())
	assert.Equal(t, 57, bounds.Dy(), "stretched to the A4 aspect ratio")
}

func TestStoreCachesBundle(t *testing.T) {
	s := NewStore(fstest.MapFS{}, Options{})
	first := s.Bundle(context.Background())
	second := s.Bundle(context.Background())
	assert.Same(t, first, second)
}

func TestStoreDegradesOnMissingAndBrokenAssets(t *testing.T) {
	fsys := fstest.MapFS{
		BackgroundName: {Data: []byte("not a png")},
		BoldFontName:   {Data: []byte{}},
	}
	b := NewStore(fsys, Options{}).Bundle(context.Background())
	assert.False(t, b.HasBackground())
	assert.Nil(t, b.Regular)
	assert.Nil(t, b.Bold)
	assert.Equal(t, []string{BoldFontName, RegularFontName, BackgroundName}, b.Missing)
}

func TestStoreWithoutDirectory(t *testing.T) {
	b := NewStore(nil, Options{}).Bundle(context.Background())
	assert.False(t, b.HasBackground())
	assert.Len(t, b.Missing, 3)
}

func TestStoreSurvivesCancelledFirstCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fsys := fstest.MapFS{RegularFontName: {Data: goregular.TTF}}
	b := NewStore(fsys, Options{}).Bundle(ctx)
	assert.Equal(t, goregular.TTF, b.Regular)
}

func TestResample(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	out := Resample(src, 100, 200, 500)
	assert.Equal(t, image.Rect(0, 0, 500, 1000), out.Bounds())

	same := Resample(src, 0, 0, 4000)
	assert.Same(t, src, same.(*image.RGBA))
}
