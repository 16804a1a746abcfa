package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgtlunion/konspekt/summary"
)

func TestLines(t *testing.T) {
	in := `Конспект психологічної сесії
Дата: 01.01.2025 | Клієнт: Тест
**Основні теми**
• Стрес на роботі
- Сон
2. Режим дня
звичайний рядок
****
**План дій**
•  **Відпочити**: у вихідні`

	got := summary.Lines(in, summary.Ukrainian)
	want := []summary.Line{
		{Kind: summary.LineHeading, Text: "Основні теми"},
		{Kind: summary.LineItem, Text: "Стрес на роботі", Bullet: true},
		{Kind: summary.LineItem, Text: "Сон", Bullet: true},
		{Kind: summary.LineItem, Text: "Режим дня"},
		{Kind: summary.LineHeading, Text: "План дій"},
		{Kind: summary.LineItem, Text: "**Відпочити**: у вихідні", Bullet: true},
	}
	assert.Equal(t, want, got)
}

func TestLinesEmpty(t *testing.T) {
	assert.Empty(t, summary.Lines("", summary.Ukrainian))
}
