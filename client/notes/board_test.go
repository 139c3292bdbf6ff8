package notes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColors(t *testing.T) {
	want := []string{"#BFDBFE", "#FECACA", "#FEF08A", "#E9D5FF", "#DCFCE7", "#E5E7EB"}
	assert.Equal(t, want, Colors())
	assert.Equal(t, "#BFDBFE", DefaultColor())

	colors := Colors()
	colors[0] = "#000000"
	assert.Equal(t, "#BFDBFE", Colors()[0], "Colors returns a copy")
}

func TestBoard_AddPrepends(t *testing.T) {
	b := NewBoard()

	first, err := b.Add("first", "a", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultColor(), first.Color)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	second, err := b.Add("second", "b", "#FECACA")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
}

func TestBoard_RejectsUnknownColor(t *testing.T) {
	b := NewBoard()
	_, err := b.Add("t", "c", "#123456")
	assert.ErrorIs(t, err, ErrUnknownColor)
	assert.Empty(t, b.List())
}

func TestBoard_UpdateAndDelete(t *testing.T) {
	b := NewBoard()
	a, err := b.Add("a", "", "")
	require.NoError(t, err)
	c, err := b.Add("c", "", "")
	require.NoError(t, err)

	updated, err := b.Update(a.ID, "A", "body", "#DCFCE7")
	require.NoError(t, err)
	assert.Equal(t, Note{ID: a.ID, Title: "A", Content: "body", Color: "#DCFCE7"}, updated)
	assert.Equal(t, []Note{c, updated}, b.List())

	_, err = b.Update("missing", "x", "", "")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = b.Update(a.ID, "x", "", "red")
	assert.ErrorIs(t, err, ErrUnknownColor)

	require.NoError(t, b.Delete(c.ID))
	assert.ErrorIs(t, b.Delete(c.ID), ErrNoteNotFound)
	assert.Equal(t, []Note{updated}, b.List())
}

func TestBoard_ListIsACopy(t *testing.T) {
	b := NewBoard()
	_, err := b.Add("a", "", "")
	require.NoError(t, err)

	list := b.List()
	list[0].Title = "changed"
	assert.Equal(t, "a", b.List()[0].Title)
}
