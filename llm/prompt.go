package llm

import (
	"strings"
	"time"

	"github.com/dgtlunion/konspekt/binding"
)

// Request is one session to summarize. Client and Date are optional.
type Request struct {
	Session string `json:"session" validate:"required"`
	Client  string `json:"client,omitempty"`
	Date    string `json:"date,omitempty"`
}

// DateLayout is the dd.mm.yyyy form used in summaries and file names.
const DateLayout = "02.01.2006"

// AnonymousClient is written into the prompt when the client is unknown.
const AnonymousClient = "Анонім"

const systemTemplate = `ЗАВДАННЯ
Зроби односторінковий PDF‑конспект психологічної сесії українською БЕЗ емодзі.
Усе має вміститись на одну сторінку A4 (портрет).

СТРУКТУРА ТЕКСТУ
1) Заголовок по центру (Bold): Конспект психологічної сесії
2) Рядок дрібним кеглем: Дата: ${date} | Клієнт: ${client|` + AnonymousClient + `}
3) Підзаголовок (Bold): Основні теми → 3–5 пунктів (Regular), без додаткових виділень
4) Підзаголовок (Bold): Ключові інсайти → 4–6 пунктів (Regular), без додаткових виділень
5) Підзаголовок (Bold): План дій → 4–6 пунктів у форматі
   • **лише головна дія жирним (1–4 слова)**: решта пояснення Regular

ПРАВИЛА ТЕКСТУ
• Мова: українська; маркер пункту — "•"; без емодзі.
• Жодної "води"; коротко, по суті.
• Якщо матеріалу забагато — стискай, не змінюючи сенсу.

ФОРМАТ ВІДПОВІДІ:
Верни тільки текст конспекту без додаткових коментарів.`

const userTemplate = `Текст сесії: ${session}`

var (
	systemTmpl = binding.Compile(systemTemplate)
	userTmpl   = binding.Compile(userTemplate)
)

// SystemPrompt renders the instruction block for req. An empty date becomes
// today's date.
func SystemPrompt(req Request, now time.Time) string {
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.Format(DateLayout)
	}
	return systemTmpl.Execute(map[string]any{
		"date":   date,
		"client": strings.TrimSpace(req.Client),
	})
}

// UserPrompt wraps the transcript.
func UserPrompt(req Request) string {
	return userTmpl.Execute(map[string]any{"session": req.Session})
}

// CleanSummary trims the model output and drops a surrounding code fence.
func CleanSummary(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
