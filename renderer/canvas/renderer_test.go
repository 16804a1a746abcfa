package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgtlunion/konspekt/fonts"
	"github.com/dgtlunion/konspekt/layout"
	"github.com/dgtlunion/konspekt/summary"
)

const sample = `Конспект психологічної сесії
Дата: 01.01.2025 | Клієнт: Тест
Основні теми
• Стрес на роботі
Ключові інсайти
• Потрібен відпочинок
План дій
• **Зателефонувати**: клієнту до п'ятниці`

func goFonts() Options {
	return Options{Regular: fonts.MustLoad(fonts.Regular), Bold: fonts.MustLoad(fonts.Bold)}
}

func build(t *testing.T, r *Renderer, sections summary.Sections, background string) *layout.Result {
	t.Helper()
	res, err := layout.Build(sections, layout.Metadata{Client: "Тест", Date: "01.01.2025"},
		layout.BuildOptions{Typesetter: r, Background: background})
	require.NoError(t, err)
	return res
}

func TestLayoutRunsWrapsWithinWidth(t *testing.T) {
	r := NewRenderer(goFonts())
	runs := []summary.Run{{Text: "hello world again and again and again"}}
	lines, err := r.LayoutRuns(runs, 60, 12, 14.4)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)
	for i, ln := range lines {
		assert.LessOrEqual(t, ln.Width, 60+1e-6, "line %d", i)
		assert.Equal(t, 14.4, ln.Height)
	}
}

func TestLayoutRunsSplitsLongWords(t *testing.T) {
	r := NewRenderer(goFonts())
	limit := 85.0
	lines, err := r.LayoutRuns([]summary.Run{{Text: strings.Repeat("a", 53)}}, limit, 12, 14.4)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)
	for i, ln := range lines {
		assert.LessOrEqual(t, ln.Width, limit+1e-6, "line %d", i)
	}
}

// A line exactly as wide as the box followed by a newline must not produce a blank line.
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer(goFonts())
	measured, err := r.LayoutRuns([]summary.Run{{Text: "SAMPLE-A"}}, 1e6, 12, 14.4)
	require.NoError(t, err)
	require.Len(t, measured, 1)
	limit := measured[0].Width
	require.Positive(t, limit)

	lines, err := r.LayoutRuns([]summary.Run{{Text: "SAMPLE-A\nSAMPLE-B"}}, limit, 12, 14.4)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "SAMPLE-A", lines[0].Text())
	assert.Equal(t, "SAMPLE-B", lines[1].Text())
}

func TestBoldMeasuresWider(t *testing.T) {
	r := NewRenderer(goFonts())
	plain, err := r.LayoutRuns([]summary.Run{{Text: "Зателефонувати"}}, 1e6, 12, 14.4)
	require.NoError(t, err)
	bold, err := r.LayoutRuns([]summary.Run{{Text: "Зателефонувати", Bold: true}}, 1e6, 12, 14.4)
	require.NoError(t, err)
	assert.Greater(t, bold[0].Width, plain[0].Width)
}

func TestRenderProducesPDF(t *testing.T) {
	opts := goFonts()
	bg := image.NewRGBA(image.Rect(0, 0, 60, 85))
	bg.Set(1, 1, color.RGBA{R: 255, A: 255})
	opts.Images = map[string]image.Image{"background_maia.png": bg}
	r := NewRenderer(opts)

	res := build(t, r, summary.Parse(sample), "background_maia.png")
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.False(t, r.UsesFallbackFonts())
}

func TestRenderWithoutAssets(t *testing.T) {
	r := NewRenderer(Options{})
	sections := summary.Parse(sample)

	// background named by the layout but never loaded
	res := build(t, r, sections, "background_maia.png")
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.True(t, r.UsesFallbackFonts())

	withFonts := build(t, NewRenderer(goFonts()), sections, "")
	assert.Equal(t, withFonts.Stats, res.Stats)
}

func TestRenderFallsBackOnBrokenFont(t *testing.T) {
	r := NewRenderer(Options{Regular: []byte("not a font"), Bold: fonts.MustLoad(fonts.Bold)})
	res := build(t, r, summary.Parse(sample), "")
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))
	assert.True(t, r.UsesFallbackFonts())
}

func TestRenderMultiplePages(t *testing.T) {
	r := NewRenderer(goFonts())
	actions := make([]string, 80)
	for i := range actions {
		actions[i] = "**Крок**: зробити щось корисне"
	}
	res := build(t, r, summary.Sections{Actions: actions}, "")
	require.Greater(t, len(res.Pages), 1)

	for _, p := range res.Pages[1:] {
		assert.Equal(t, layout.RoleItem, p.Texts[0].Role)
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(goFonts())
	assert.Error(t, r.Render(&bytes.Buffer{}, nil))
	assert.Error(t, r.Render(&bytes.Buffer{}, &layout.Result{}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderSurfacesSinkFailure(t *testing.T) {
	r := NewRenderer(goFonts())
	res := build(t, r, summary.Parse(sample), "")
	assert.Error(t, r.Render(failingWriter{}, res))
}
