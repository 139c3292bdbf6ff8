// Package tui is the full-screen terminal client: sign-in, the task list with
// its add/edit dialog and delete confirmation, and the sticky-note board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bijaykarki4742/summer-class-web/client/notes"
	"github.com/bijaykarki4742/summer-class-web/client/session"
	"github.com/bijaykarki4742/summer-class-web/client/tasklist"
	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
)

// Deps are the controllers the screens drive. All are owned by the caller.
type Deps struct {
	Session *session.Controller
	Tasks   *tasklist.Controller
	Notes   *notes.Board
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	if !IsTTY(os.Stdout) {
		return errors.New("ui requires a TTY")
	}
	program := tea.NewProgram(newModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

var errDueDate = errors.New("Due date must look like 2025-01-31")

type screen int

const (
	screenLoading screen = iota
	screenSignIn
	screenTasks
	screenNotes
)

// Task dialog fields.
const (
	fieldName = iota
	fieldDescription
	fieldDueDate
	fieldTag
)

// Note dialog fields.
const (
	fieldTitle = iota
	fieldContent
	fieldColor
)

type (
	sessionReadyMsg struct{}
	signInDoneMsg   struct{ res session.Result }
	resetDoneMsg    struct{ res session.Result }
	signedOutMsg    struct{}
	tasksLoadedMsg  struct{ err error }
	taskSavedMsg    struct{ err error }
	taskDeletedMsg  struct{ err error }
)

type model struct {
	ctx  context.Context
	deps Deps

	screen     screen
	cursor     int
	noteCursor int
	busy       bool
	errMsg     string
	info       string

	signIn   *form
	taskForm *form
	noteForm *form
	noteID   string
}

func newModel(ctx context.Context, deps Deps) *model {
	return &model{
		ctx:    ctx,
		deps:   deps,
		screen: screenLoading,
		signIn: newSignInForm(),
	}
}

func newSignInForm() *form {
	return newForm("Email", "Password").secret(1)
}

func newTaskForm(d domain.Draft) *form {
	f := newForm("Task name", "Description", "Due date (YYYY-MM-DD)", "Tag ("+strings.Join(domain.DefaultTags, ", ")+")")
	f.set(fieldName, d.Name)
	f.set(fieldDescription, d.Description)
	f.set(fieldDueDate, d.DueDate.String())
	f.set(fieldTag, d.Tag)
	return f
}

func newNoteForm(n notes.Note) *form {
	f := newForm("Title", "Content", fmt.Sprintf("Color (1-%d)", len(notes.Colors())))
	f.set(fieldTitle, n.Title)
	f.set(fieldContent, n.Content)
	f.set(fieldColor, strconv.Itoa(colorIndex(n.Color)+1))
	return f
}

func colorIndex(color string) int {
	for i, c := range notes.Colors() {
		if c == color {
			return i
		}
	}
	return 0
}

func (m *model) Init() tea.Cmd {
	return func() tea.Msg {
		m.deps.Session.Start(m.ctx)
		return sessionReadyMsg{}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	case sessionReadyMsg:
		return m, m.route()
	case signInDoneMsg:
		m.busy = false
		if !msg.res.Success {
			m.errMsg = msg.res.Error
			m.info = msg.res.Message
			return m, nil
		}
		m.signIn = newSignInForm()
		m.errMsg, m.info = "", ""
		return m, m.route()
	case resetDoneMsg:
		m.busy = false
		m.errMsg = msg.res.Error
		m.info = msg.res.Message
	case signedOutMsg:
		m.busy = false
		m.taskForm, m.noteForm = nil, nil
		m.errMsg, m.info = "", "Signed out."
		m.screen = screenSignIn
	case tasksLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = "Failed to load tasks"
		}
		m.clampCursor()
	case taskSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = "Failed to save task"
			return m, nil
		}
		m.errMsg = ""
		if m.deps.Tasks.Dialog().Mode == tasklist.DialogClosed {
			m.taskForm = nil
		}
	case taskDeletedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = "Failed to delete task"
		}
		m.clampCursor()
	}
	return m, nil
}

// route sends the user wherever the session state allows.
func (m *model) route() tea.Cmd {
	switch err := m.deps.Session.Guard(); {
	case errors.Is(err, session.ErrSessionLoading):
		m.screen = screenLoading
		return nil
	case err != nil:
		m.screen = screenSignIn
		return nil
	}
	if m.screen == screenLoading || m.screen == screenSignIn {
		m.screen = screenTasks
		return m.loadTasks()
	}
	return nil
}

func (m *model) loadTasks() tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return tasksLoadedMsg{err: m.deps.Tasks.Load(m.ctx)}
	}
}

func (m *model) clampCursor() {
	n := len(m.deps.Tasks.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.screen == screenTasks || m.screen == screenNotes {
		if m.deps.Session.Guard() != nil {
			return m.route()
		}
	}

	switch m.screen {
	case screenSignIn:
		return m.signInKey(msg)
	case screenTasks:
		return m.tasksKey(msg)
	case screenNotes:
		return m.notesKey(msg)
	default:
		if msg.String() == "q" {
			return tea.Quit
		}
		return nil
	}
}

func (m *model) signInKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyCtrlR:
		email := m.signIn.value(0)
		if email == "" {
			m.errMsg = "Enter your email to reset the password"
			return nil
		}
		m.busy = true
		return func() tea.Msg {
			return resetDoneMsg{res: m.deps.Session.RequestPasswordReset(m.ctx, email)}
		}
	}

	if !m.signIn.handleKey(msg) || m.busy {
		return nil
	}
	email, password := m.signIn.value(0), m.signIn.raw(1)
	if email == "" || password == "" {
		m.errMsg = "Email and password are required"
		return nil
	}
	m.busy = true
	m.errMsg, m.info = "", ""
	return func() tea.Msg {
		return signInDoneMsg{res: m.deps.Session.SignIn(m.ctx, email, password)}
	}
}

func (m *model) selectedTask() (domain.Task, bool) {
	tasks := m.deps.Tasks.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *model) tasksKey(msg tea.KeyMsg) tea.Cmd {
	tasks := m.deps.Tasks

	if m.taskForm != nil && tasks.Dialog().Mode != tasklist.DialogClosed {
		if msg.Type == tea.KeyEsc {
			tasks.CloseDialog()
			m.taskForm = nil
			m.errMsg = ""
			return nil
		}
		if !m.taskForm.handleKey(msg) || m.busy {
			return nil
		}
		draft, err := m.draft()
		if err != nil {
			m.errMsg = err.Error()
			return nil
		}
		m.busy = true
		return func() tea.Msg {
			return taskSavedMsg{err: tasks.Submit(m.ctx, draft)}
		}
	}
	m.taskForm = nil

	if _, pending := tasks.PendingDelete(); pending {
		switch msg.String() {
		case "y", "enter":
			if m.busy {
				return nil
			}
			m.busy = true
			return func() tea.Msg {
				return taskDeletedMsg{err: tasks.ConfirmDelete(m.ctx)}
			}
		case "n", "esc":
			tasks.CancelDelete()
		}
		return nil
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(tasks.Tasks())-1 {
			m.cursor++
		}
	case "a":
		tasks.OpenAdd()
		m.taskForm = newTaskForm(domain.Draft{})
		m.errMsg = ""
	case "e", "enter":
		t, ok := m.selectedTask()
		if !ok {
			return nil
		}
		draft, err := tasks.OpenEdit(t.ID)
		if err != nil {
			m.errMsg = err.Error()
			return nil
		}
		m.taskForm = newTaskForm(draft)
		m.errMsg = ""
	case "d":
		if t, ok := m.selectedTask(); ok {
			if err := tasks.RequestDelete(t.ID); err != nil {
				m.errMsg = err.Error()
			}
		}
	case "r":
		m.errMsg = ""
		return m.loadTasks()
	case "n":
		m.screen = screenNotes
		m.errMsg = ""
	case "o":
		m.busy = true
		return func() tea.Msg {
			m.deps.Session.SignOut(m.ctx)
			return signedOutMsg{}
		}
	}
	return nil
}

func (m *model) draft() (domain.Draft, error) {
	f := m.taskForm
	due, err := domain.ParseDate(f.value(fieldDueDate))
	if err != nil {
		return domain.Draft{}, errDueDate
	}
	return domain.Draft{
		Name:        f.value(fieldName),
		Description: f.value(fieldDescription),
		DueDate:     due,
		Tag:         f.value(fieldTag),
	}, nil
}

func (m *model) notesKey(msg tea.KeyMsg) tea.Cmd {
	board := m.deps.Notes

	if m.noteForm != nil {
		if msg.Type == tea.KeyEsc {
			m.noteForm = nil
			m.errMsg = ""
			return nil
		}
		if !m.noteForm.handleKey(msg) {
			return nil
		}
		m.saveNote()
		return nil
	}

	list := board.List()
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.noteCursor > 0 {
			m.noteCursor--
		}
	case "down", "j":
		if m.noteCursor < len(list)-1 {
			m.noteCursor++
		}
	case "a":
		m.noteID = ""
		m.noteForm = newNoteForm(notes.Note{Color: notes.DefaultColor()})
	case "e", "enter":
		if m.noteCursor < len(list) {
			n := list[m.noteCursor]
			m.noteID = n.ID
			m.noteForm = newNoteForm(n)
		}
	case "d":
		if m.noteCursor < len(list) {
			if err := board.Delete(list[m.noteCursor].ID); err != nil {
				m.errMsg = err.Error()
			}
			if m.noteCursor > 0 && m.noteCursor >= len(list)-1 {
				m.noteCursor--
			}
		}
	case "t", "esc":
		m.screen = screenTasks
		m.errMsg = ""
	}
	return nil
}

func (m *model) saveNote() {
	f := m.noteForm
	colors := notes.Colors()
	idx, err := strconv.Atoi(f.value(fieldColor))
	if err != nil || idx < 1 || idx > len(colors) {
		m.errMsg = fmt.Sprintf("Color must be a number from 1 to %d", len(colors))
		return
	}
	color := colors[idx-1]

	if m.noteID == "" {
		_, err = m.deps.Notes.Add(f.value(fieldTitle), f.value(fieldContent), color)
		m.noteCursor = 0
	} else {
		_, err = m.deps.Notes.Update(m.noteID, f.value(fieldTitle), f.value(fieldContent), color)
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.noteForm = nil
	m.errMsg = ""
}

func (m *model) View() string {
	var b strings.Builder
	writeTitle(&b, m.deps.Session)

	switch m.screen {
	case screenLoading:
		b.WriteString("Loading...\n")
		return b.String()
	case screenSignIn:
		m.viewSignIn(&b)
	case screenTasks:
		m.viewTasks(&b)
	case screenNotes:
		m.viewNotes(&b)
	}

	if m.errMsg != "" {
		b.WriteString("\nError: " + m.errMsg + "\n")
	}
	if m.info != "" {
		b.WriteString("\n" + m.info + "\n")
	}
	if m.busy {
		b.WriteString("\nWorking...\n")
	}
	return b.String()
}

func writeTitle(b *strings.Builder, s *session.Controller) {
	title := "MyDay"
	if u := s.User(); u != nil {
		title += " - " + u.Email
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *model) viewSignIn(b *strings.Builder) {
	if !m.deps.Session.Snapshot().Configured {
		b.WriteString("Authentication system is not properly configured.\n\n")
	}
	b.WriteString("Sign in\n\n")
	m.signIn.view(b)
	b.WriteString("\nenter: sign in  tab: next field  ctrl+r: reset password  esc: quit\n")
}

func (m *model) viewTasks(b *strings.Builder) {
	tasks := m.deps.Tasks
	list := tasks.Tasks()

	b.WriteString("Tasks\n\n")
	if len(list) == 0 {
		b.WriteString("  No tasks yet.\n")
	}
	for i, t := range list {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		b.WriteString(marker + formatTask(t) + "\n")
	}

	if id, ok := tasks.PendingDelete(); ok {
		name := ""
		if t, found := tasks.Find(id); found {
			name = t.Name
		}
		fmt.Fprintf(b, "\nDelete task %q? (y/n)\n", name)
		return
	}

	if m.taskForm != nil {
		switch d := tasks.Dialog(); d.Mode {
		case tasklist.DialogAdd:
			b.WriteString("\nAdd task\n\n")
		case tasklist.DialogEdit:
			fmt.Fprintf(b, "\nEdit task #%d\n\n", d.TaskID)
		}
		m.taskForm.view(b)
		b.WriteString("\nenter on last field: save  esc: cancel\n")
		return
	}

	b.WriteString("\na: add  e: edit  d: delete  r: reload  n: notes  o: sign out  q: quit\n")
}

func formatTask(t domain.Task) string {
	line := fmt.Sprintf("#%-4d %s", t.ID, t.Name)
	if t.DueDate != nil && !t.DueDate.IsZero() {
		line += "  (due " + t.DueDate.String() + ")"
	}
	if t.Tag != "" {
		line += "  [" + t.Tag + "]"
	}
	if t.Description != "" {
		line += "\n        " + t.Description
	}
	return line
}

func (m *model) viewNotes(b *strings.Builder) {
	list := m.deps.Notes.List()

	b.WriteString("Sticky Notes\n\n")
	if len(list) == 0 {
		b.WriteString("  No notes yet.\n")
	}
	for i, n := range list {
		marker := "  "
		if i == m.noteCursor {
			marker = "> "
		}
		fmt.Fprintf(b, "%s[%d] %s\n", marker, colorIndex(n.Color)+1, n.Title)
		if n.Content != "" {
			b.WriteString("      " + n.Content + "\n")
		}
	}

	if m.noteForm != nil {
		if m.noteID == "" {
			b.WriteString("\nAdd Sticky Note\n\n")
		} else {
			b.WriteString("\nEdit Sticky Note\n\n")
		}
		m.noteForm.view(b)
		b.WriteString("\nenter on last field: save  esc: cancel\n")
		return
	}

	b.WriteString("\na: add  e: edit  d: delete  t: tasks  q: quit\n")
}
