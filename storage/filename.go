package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Prefix starts every generated document name.
const Prefix = "konspekt"

// Ukrainian national transliteration (2010), lower-case forms. Upper-case
// letters map to the capitalised form.
var ukrainianLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g", 'д': "d", 'е': "e",
	'є': "ie", 'ж': "zh", 'з': "z", 'и': "y", 'і': "i", 'ї': "i", 'й': "i",
	'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ь': "", 'ю': "iu", 'я': "ia", '\'': "", '’': "", 'ʼ': "",
	// Russian letters that show up in names
	'ё': "io", 'ы': "y", 'э': "e", 'ъ': "",
}

// Iotated letters are spelled differently at the start of a word.
var ukrainianInitial = map[rune]string{
	'є': "ye", 'ї': "yi", 'й': "y", 'ю': "yu", 'я': "ya",
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscores = regexp.MustCompile(`_{2,}`)
	dots        = regexp.MustCompile(`\.{2,}`)
	validName   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.pdf$`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Transliterate converts Cyrillic to Latin and drops diacritics from Latin
// letters, so "Олена Коваль" becomes "Olena Koval" and "José" becomes "Jose".
func Transliterate(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	wordStart := true
	for _, r := range s {
		lower := unicode.ToLower(r)
		latin, ok := ukrainianLatin[lower]
		if initial, isIotated := ukrainianInitial[lower]; isIotated && wordStart {
			latin = initial
		}
		wordStart = !unicode.IsLetter(r) && r != '\'' && r != '’' && r != 'ʼ'
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower != r && latin != "" {
			latin = strings.ToUpper(latin[:1]) + latin[1:]
		}
		b.WriteString(latin)
	}
	out, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

// Sanitize makes s safe as a single file name component.
func Sanitize(s string) string {
	s = Transliterate(strings.TrimSpace(s))
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = dots.ReplaceAllString(s, ".")
	return strings.Trim(s, "._-")
}

// FileName builds konspekt_<client>_<date>.pdf. Missing parts are skipped.
func FileName(client, date string) string {
	parts := []string{Prefix}
	for _, p := range []string{client, date} {
		if s := Sanitize(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "_") + ".pdf"
}

// ValidName reports whether name is a plain PDF file name that cannot
// escape the storage directory.
func ValidName(name string) bool {
	return validName.MatchString(name) && !strings.Contains(name, "..")
}
