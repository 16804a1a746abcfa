package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"date":   "01.01.2025",
		"client": "",
		"meta": map[string]any{
			"tags":   []any{"перша", "друга"},
			"labels": map[string]string{"date": "Дата:"},
		},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no placeholders", "no placeholders"},
		{"value", "Дата: ${date}", "Дата: 01.01.2025"},
		{"nested", "${meta.labels.date} ${date}", "Дата: 01.01.2025"},
		{"index", "${meta.tags[1]}", "друга"},
		{"missing kept", "${nope}", "${nope}"},
		{"out of range kept", "${meta.tags[5]}", "${meta.tags[5]}"},
		{"fallback for missing", "${nope|Не вказано}", "Не вказано"},
		{"fallback for empty", "Клієнт: ${client | Не вказано}", "Клієнт: Не вказано"},
		{"empty without fallback", "[${client}]", "[]"},
		{"value beats fallback", "${date|сьогодні}", "01.01.2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.in, data))
		})
	}
}

func TestInterpolateNilData(t *testing.T) {
	assert.Equal(t, "${a}", Interpolate("${a}", nil))
	assert.Equal(t, "x", Interpolate("${a|x}", nil))
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(map[string]any{"a": map[string]any{"b": 3}}, " a.b ")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = Lookup(map[string]any{}, "a.b")
	assert.False(t, ok)
}

func TestCompile(t *testing.T) {
	tmpl := Compile("${dateLabel} ${date} | ${clientLabel} ${client|Не вказано}")
	assert.Equal(t, []string{"dateLabel", "date", "clientLabel", "client"}, tmpl.Paths())
	assert.Equal(t, "Дата: 01.01.2025 | Клієнт: Не вказано", tmpl.Execute(map[string]string{
		"dateLabel": "Дата:", "date": "01.01.2025", "clientLabel": "Клієнт:",
	}))
}

func TestCompileMalformed(t *testing.T) {
	for _, in := range []string{"${", "${}", "a ${ } b", "${a[x]}", "open ${date"} {
		assert.Equal(t, in, Interpolate(in, map[string]any{"a": []any{1}, "date": "d"}), in)
	}
	assert.Equal(t, "[[d]]", Interpolate("[[${date}]]", map[string]any{"date": "d"}))
}

func TestNestedIndexes(t *testing.T) {
	data := map[string]any{"grid": []any{[]any{"a", "b"}, []string{"c"}}}
	assert.Equal(t, "b c", Interpolate("${grid[0][1]} ${grid[1][0]}", data))
}
