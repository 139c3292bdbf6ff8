// Package notes is an in-memory sticky-note board. Notes live only as long
// as the process that holds the board.
package notes

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrNoteNotFound is returned when an ID is not on the board.
var ErrNoteNotFound = errors.New("note not found")

// ErrUnknownColor is returned for a colour outside the palette.
var ErrUnknownColor = errors.New("color is not in the palette")

var palette = []string{
	"#BFDBFE", // blue
	"#FECACA", // red
	"#FEF08A", // yellow
	"#E9D5FF", // purple
	"#DCFCE7", // green
	"#E5E7EB", // gray
}

// Colors returns the preset note colours. The first is the default.
func Colors() []string {
	return slices.Clone(palette)
}

// DefaultColor is used when a note is added without one.
func DefaultColor() string {
	return palette[0]
}

// Note is a single sticky note.
type Note struct {
	ID      string
	Title   string
	Content string
	Color   string
}

// Board holds notes newest first.
type Board struct {
	mu    sync.Mutex
	notes []Note
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

func validColor(color string) bool {
	return slices.Contains(palette, color)
}

// Add puts a new note at the top of the board. An empty color picks the default.
func (b *Board) Add(title, content, color string) (Note, error) {
	if color == "" {
		color = DefaultColor()
	}
	if !validColor(color) {
		return Note{}, ErrUnknownColor
	}

	n := Note{ID: uuid.NewString(), Title: title, Content: content, Color: color}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append([]Note{n}, b.notes...)
	return n, nil
}

// Update replaces the fields of note id in place.
func (b *Board) Update(id, title, content, color string) (Note, error) {
	if color == "" {
		color = DefaultColor()
	}
	if !validColor(color) {
		return Note{}, ErrUnknownColor
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	b.notes[i] = Note{ID: id, Title: title, Content: content, Color: color}
	return b.notes[i], nil
}

// Delete removes note id.
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return ErrNoteNotFound
	}
	b.notes = slices.Delete(b.notes, i, i+1)
	return nil
}

// List returns a copy of the notes, newest first.
func (b *Board) List() []Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notes)
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.notes, func(n Note) bool { return n.ID == id })
}
