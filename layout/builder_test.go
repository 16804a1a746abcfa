package layout

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgtlunion/konspekt/summary"
)

// monoTypesetter wraps with a monospace metric: every rune is half the font size wide.
type monoTypesetter struct{}

func (monoTypesetter) LayoutRuns(runs []summary.Run, width, fontSize, lineHeight float64) ([]TextLine, error) {
	measure := func(s string, _ bool) float64 { return float64(utf8.RuneCountInString(s)) * fontSize / 2 }
	return WrapRuns(runs, width, lineHeight, measure), nil
}

// fixedTypesetter returns one line of a fixed height for every element, so the
// cursor advances by a known amount.
type fixedTypesetter struct{ height float64 }

func (f fixedTypesetter) LayoutRuns(runs []summary.Run, width, fontSize, lineHeight float64) ([]TextLine, error) {
	var spans []Span
	for _, r := range runs {
		spans = append(spans, Span{Text: r.Text, Bold: r.Bold})
	}
	return []TextLine{{Spans: spans, Height: f.height}}, nil
}

type failingTypesetter struct{}

func (failingTypesetter) LayoutRuns([]summary.Run, float64, float64, float64) ([]TextLine, error) {
	return nil, fmt.Errorf("no glyphs")
}

const sample = `Конспект психологічної сесії
Дата: 01.01.2025 | Клієнт: Тест
Основні теми
• Стрес на роботі
Ключові інсайти
• Потрібен відпочинок
План дій
• **Зателефонувати**: клієнту до п'ятниці`

func fixedNow() time.Time { return time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC) }

func boxes(res *Result, role Role) []TextBox {
	var out []TextBox
	for _, p := range res.Pages {
		for _, tb := range p.Texts {
			if tb.Role == role {
				out = append(out, tb)
			}
		}
	}
	return out
}

func TestBuildEndToEndBoldHeadline(t *testing.T) {
	sections := summary.Parse(sample)
	res, err := Build(sections, Metadata{Client: "Тест", Date: "01.01.2025"}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)

	require.Len(t, res.Pages, 1)
	assert.Equal(t, Stats{Pages: 1, Headings: 3, Items: 3}, res.Stats)

	items := boxes(res, RoleItem)
	require.Len(t, items, 3)
	action := items[2]
	require.Len(t, action.Lines, 1, "headline and remainder share one visual line")
	spans := action.Lines[0].Spans
	require.Len(t, spans, 3)
	assert.Equal(t, Span{Text: "• ", X: 0, Width: spans[0].Width}, spans[0])
	assert.Equal(t, "Зателефонувати", spans[1].Text)
	assert.True(t, spans[1].Bold)
	assert.Equal(t, ": клієнту до п'ятниці", spans[2].Text)
	assert.False(t, spans[2].Bold)
	assert.InDelta(t, spans[1].X+spans[1].Width, spans[2].X, 1e-9)
}

func TestBuildHeader(t *testing.T) {
	res, err := Build(summary.Sections{}, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}, Now: fixedNow})
	require.NoError(t, err)

	titles := boxes(res, RoleTitle)
	require.Len(t, titles, 1)
	assert.Equal(t, "Конспект психологічної сесії", titles[0].Text())
	assert.True(t, titles[0].Lines[0].Spans[0].Bold)

	subs := boxes(res, RoleSubtitle)
	require.Len(t, subs, 1)
	assert.Equal(t, "Дата: 02.03.2025 | Клієнт: Не вказано", subs[0].Text())
	assert.Equal(t, DefaultTheme().MutedColor, subs[0].Color)
	assert.Equal(t, subs[0].Text(), res.Meta.Subject)

	// centered: equal room left and right of the line
	line := titles[0].Lines[0]
	left := line.Spans[0].X
	assert.InDelta(t, titles[0].Width-line.Width, 2*left, 1e-6)
}

func TestBuildMalformedInputHasOnlyHeader(t *testing.T) {
	res, err := Build(summary.Parse("just some prose\nwithout any headers"), Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Len(t, res.Pages[0].Texts, 2)
	assert.Equal(t, 0, res.Stats.Headings)
}

func TestBuildSuppressesEmptyCategories(t *testing.T) {
	sections := summary.Sections{
		Topics:  []string{"one"},
		Actions: []string{"two"},
	}
	res, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)

	headings := boxes(res, RoleHeading)
	require.Len(t, headings, 2)
	assert.Equal(t, "Основні теми", headings[0].Text())
	assert.Equal(t, "План дій", headings[1].Text())
	for _, h := range headings {
		assert.NotContains(t, h.Text(), "Ключові інсайти")
	}
}

func TestBuildPaginationTrigger(t *testing.T) {
	// Every element is 20pt tall. The first heading starts at 120 and the
	// first item at 150; items advance by 20 + 5. A page breaks before an
	// element once the cursor has passed 700.
	perItem := 20.0 + DefaultTheme().ItemGap
	firstItemY := DefaultGeometry().ContentStartY + 20 + DefaultTheme().HeadingGap

	tests := []struct {
		n         int
		wantPages int
	}{
		{1, 1},
		{23, 1},
		{24, 2},
		{50, 2},
		{51, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.n), func(t *testing.T) {
			actions := make([]string, tt.n)
			for i := range actions {
				actions[i] = fmt.Sprintf("Крок %d", i+1)
			}
			res, err := Build(summary.Sections{Actions: actions}, Metadata{}, BuildOptions{
				Typesetter: fixedTypesetter{height: 20},
				Background: "background_maia.png",
			})
			require.NoError(t, err)
			assert.Len(t, res.Pages, tt.wantPages)
			assert.Equal(t, tt.n, res.Stats.Items)

			for _, p := range res.Pages {
				require.NotNil(t, p.Background, "page %d", p.Index)
				assert.Equal(t, "background_maia.png", p.Background.Name)
				assert.Equal(t, p.Width, p.Background.Width)
				assert.Equal(t, p.Height, p.Background.Height)
			}

			items := boxes(res, RoleItem)
			assert.InDelta(t, firstItemY, items[0].Y, 1e-9)
			for i := 1; i < len(items); i++ {
				prev, cur := items[i-1], items[i]
				if prev.Y+perItem > DefaultGeometry().MaxContentY {
					assert.InDelta(t, DefaultGeometry().TopMargin, cur.Y, 1e-9, "item %d opens a page", i)
				} else {
					assert.InDelta(t, prev.Y+perItem, cur.Y, 1e-9, "item %d", i)
				}
			}
		})
	}
}

func TestBuildCursorMonotonicWithinPage(t *testing.T) {
	long := strings.Repeat("слово ", 60)
	sections := summary.Sections{
		Topics:   []string{long, long, long},
		Insights: []string{long, long, long, long},
		Actions:  []string{"**Крок**: " + long, long, long},
	}
	res, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)
	require.Greater(t, len(res.Pages), 1)

	for _, p := range res.Pages {
		last := -1.0
		for _, tb := range p.Texts {
			if tb.Role == RoleTitle || tb.Role == RoleSubtitle {
				continue
			}
			assert.GreaterOrEqual(t, tb.Y, last, "page %d", p.Index)
			last = tb.Y + tb.Height
		}
		if p.Index > 0 {
			assert.InDelta(t, DefaultGeometry().TopMargin, p.Texts[0].Y, 1e-9)
		}
	}
}

func TestBuildWithoutBackground(t *testing.T) {
	sections := summary.Parse(sample)
	with, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}, Background: "bg.png"})
	require.NoError(t, err)
	without, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)

	for _, p := range without.Pages {
		assert.Nil(t, p.Background)
	}
	assert.Equal(t, with.Stats, without.Stats)
}

func TestBuildBoldModes(t *testing.T) {
	sections := summary.Sections{
		Topics:  []string{"a **b** c"},
		Actions: []string{"**Зробити**: потім", "без **двокрапки**"},
	}

	t.Run("inline", func(t *testing.T) {
		res, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
		require.NoError(t, err)
		items := boxes(res, RoleItem)
		require.Len(t, items, 3)
		spans := items[0].Lines[0].Spans
		require.Len(t, spans, 3)
		assert.Equal(t, "• a ", spans[0].Text)
		assert.Equal(t, "b", spans[1].Text)
		assert.True(t, spans[1].Bold)
		assert.Equal(t, " c", spans[2].Text)

		noColon := items[2].Lines[0].Spans
		require.Len(t, noColon, 1, "an action without a colon is one plain run")
		assert.Equal(t, "• без двокрапки", noColon[0].Text)
		assert.False(t, noColon[0].Bold)
	})

	t.Run("strip", func(t *testing.T) {
		res, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}, BoldMode: BoldStrip})
		require.NoError(t, err)
		items := boxes(res, RoleItem)
		require.Len(t, items, 3)
		assert.Equal(t, []Span{{Text: "• a b c", Width: items[0].Lines[0].Spans[0].Width}}, items[0].Lines[0].Spans)

		headline := items[1].Lines[0].Spans
		require.Len(t, headline, 3)
		assert.True(t, headline[1].Bold)

		noColon := items[2].Lines[0].Spans
		require.Len(t, noColon, 1)
		assert.Equal(t, "• без двокрапки", noColon[0].Text)
	})
}

func TestBuildWrapsWithinItemWidth(t *testing.T) {
	sections := summary.Sections{Insights: []string{strings.Repeat("довгий текст ", 40)}}
	res, err := Build(sections, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)

	item := boxes(res, RoleItem)[0]
	require.Greater(t, len(item.Lines), 1)
	for _, ln := range item.Lines {
		assert.LessOrEqual(t, ln.Width, DefaultGeometry().ItemWidth()+1e-9)
	}
	assert.InDelta(t, float64(len(item.Lines))*11*1.2, item.Height, 1e-9)
}

func TestBuildLines(t *testing.T) {
	text := "Конспект психологічної сесії\n**Основні теми**\n- перше\n1. друге\nпроза\n• **третє**"
	res, err := BuildLines(summary.Lines(text, summary.Ukrainian), Metadata{}, BuildOptions{Typesetter: monoTypesetter{}})
	require.NoError(t, err)

	assert.Equal(t, Stats{Pages: 1, Headings: 1, Items: 3}, res.Stats)
	items := boxes(res, RoleItem)
	assert.Equal(t, "• перше", items[0].Text())
	assert.Equal(t, "друге", items[1].Text())
	assert.Equal(t, "• третє", items[2].Text())
	assert.True(t, items[2].Lines[0].Spans[1].Bold)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(summary.Sections{}, Metadata{}, BuildOptions{})
	assert.ErrorContains(t, err, "missing typesetter")

	_, err = Build(summary.Sections{Topics: []string{"x"}}, Metadata{}, BuildOptions{Typesetter: failingTypesetter{}})
	assert.ErrorContains(t, err, "no glyphs")

	geo := DefaultGeometry()
	geo.MaxContentY = geo.TopMargin
	_, err = Build(summary.Sections{}, Metadata{}, BuildOptions{Typesetter: monoTypesetter{}, Geometry: geo})
	assert.Error(t, err)
}
