package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type field struct {
	label  string
	value  []rune
	secret bool
}

// form is a column of single-line text fields. Enter on the last field
// submits; Tab and the arrow keys move focus.
type form struct {
	fields []field
	focus  int
}

func newForm(labels ...string) *form {
	f := &form{fields: make([]field, len(labels))}
	for i, label := range labels {
		f.fields[i].label = label
	}
	return f
}

func (f *form) secret(i int) *form {
	f.fields[i].secret = true
	return f
}

func (f *form) set(i int, v string) {
	f.fields[i].value = []rune(v)
}

func (f *form) value(i int) string {
	return strings.TrimSpace(string(f.fields[i].value))
}

// raw returns the field exactly as typed, for passwords.
func (f *form) raw(i int) string {
	return string(f.fields[i].value)
}

// handleKey applies a key press and reports whether the form was submitted.
func (f *form) handleKey(msg tea.KeyMsg) bool {
	cur := &f.fields[f.focus]
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
	case tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			return true
		}
		f.focus++
	case tea.KeyBackspace:
		if n := len(cur.value); n > 0 {
			cur.value = cur.value[:n-1]
		}
	case tea.KeySpace:
		cur.value = append(cur.value, ' ')
	case tea.KeyRunes:
		cur.value = append(cur.value, msg.Runes...)
	}
	return false
}

func (f *form) view(b *strings.Builder) {
	for i, fld := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		value := string(fld.value)
		if fld.secret {
			value = strings.Repeat("*", len(fld.value))
		}
		cursor := ""
		if i == f.focus {
			cursor = "_"
		}
		b.WriteString(marker + fld.label + ": " + value + cursor + "\n")
	}
}
