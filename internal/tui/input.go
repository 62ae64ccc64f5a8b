package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one labelled text input.
type field struct {
	label  string
	value  string
	secret bool
}

// form is a vertical stack of fields with a single focus.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

// update applies a key to the form. tab and arrows move focus, everything else
// edits the focused field.
func (f form) update(key string) form {
	switch key {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	default:
		f.fields[f.focus].value = editRune(f.fields[f.focus].value, key)
	}
	return f
}

// onLast reports whether focus is on the final field.
func (f form) onLast() bool {
	return f.focus == len(f.fields)-1
}

func (f form) value(i int) string {
	return f.fields[i].value
}

// complete reports whether every field except the optional ones has a value.
func (f form) complete(optional ...int) bool {
	skip := make(map[int]bool, len(optional))
	for _, i := range optional {
		skip[i] = true
	}
	for i, fl := range f.fields {
		if !skip[i] && strings.TrimSpace(fl.value) == "" {
			return false
		}
	}
	return true
}

// view renders the fields with a cursor on the focused one.
func (f form) view() string {
	var b strings.Builder
	for i, fl := range f.fields {
		shown := fl.value
		if fl.secret {
			shown = strings.Repeat("•", utf8.RuneCountInString(fl.value))
		}
		prompt := "  "
		if i == f.focus {
			prompt = inputPromptStyle.Render("> ")
			shown = selectedStyle.Render(shown) + accentStyle.Render("█")
		} else if shown == "" {
			shown = inputPlaceholderStyle.Render("...")
		} else {
			shown = normalStyle.Render(shown)
		}
		b.WriteString(" " + prompt + labelStyle.Render(fl.label) + shown + "\n")
	}
	return b.String()
}
