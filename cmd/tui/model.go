package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/laisky-notion-blog/internal/thread"
	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
)

const (
	defaultWidth = 80
	draftHeight  = 4
	// maxDraftRunes matches the limit enforced by the comment api
	maxDraftRunes = 2000
)

// Thread is the comment thread the model renders
type Thread interface {
	PageID() string
	Comments(ctx context.Context) ([]model.CommentViewModel, error)
	Current() ([]model.CommentViewModel, bool)
	Refresh(ctx context.Context) error
	Subscribe() (<-chan thread.Update, func())
	Submit(ctx context.Context, content string) error
	SetDraft(text string)
	Draft() string
	Loading() bool
}

// commentsMsg carries the result of an explicit load or refresh
type commentsMsg struct {
	views []model.CommentViewModel
	err   error
}

// updateMsg is sent whenever the thread fetched a new comment list
type updateMsg struct{}

// submitDoneMsg is sent once a submission finished
type submitDoneMsg struct {
	err error
}

// keyMap defines the key bindings of the thread view
type keyMap struct {
	Submit  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "send"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

// Model is the bubbletea model of one page's comment thread
type Model struct {
	ctx    context.Context
	th     Thread
	styles Styles

	draft   textarea.Model
	spinner spinner.Model

	comments []model.CommentViewModel
	// loaded is false until the first list arrived
	loaded     bool
	submitting bool
	err        error

	updates     <-chan thread.Update
	unsubscribe func()

	width    int
	quitting bool
}

// NewModel creates the model of th rendered in scheme.
// ctx bounds every request the model issues.
func NewModel(ctx context.Context, th Thread, scheme string) Model {
	styles := NewStyles(scheme)

	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.ShowLineNumbers = false
	ta.CharLimit = maxDraftRunes
	ta.SetWidth(defaultWidth - 4)
	ta.SetHeight(draftHeight)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Progress

	updates, unsubscribe := th.Subscribe()
	return Model{
		ctx:         ctx,
		th:          th,
		styles:      styles,
		draft:       ta,
		spinner:     sp,
		updates:     updates,
		unsubscribe: unsubscribe,
		width:       defaultWidth,
	}
}

// Init loads the comments and starts listening for updates
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.loadComments(),
		waitForUpdate(m.updates),
	)
}

func (m Model) loadComments() tea.Cmd {
	ctx, th := m.ctx, m.th
	return func() tea.Msg {
		views, err := th.Comments(ctx)
		return commentsMsg{views: views, err: err}
	}
}

func (m Model) refreshComments() tea.Cmd {
	ctx, th := m.ctx, m.th
	return func() tea.Msg {
		if err := th.Refresh(ctx); err != nil {
			return commentsMsg{err: err}
		}

		views, _ := th.Current()
		return commentsMsg{views: views}
	}
}

func (m Model) submit(content string) tea.Cmd {
	ctx, th := m.ctx, m.th
	return func() tea.Msg {
		return submitDoneMsg{err: th.Submit(ctx, content)}
	}
}

// waitForUpdate blocks until the thread publishes a new list
func waitForUpdate(updates <-chan thread.Update) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return updateMsg{}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.draft.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commentsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.comments = msg.views
		m.loaded = true
		m.err = nil
		return m, nil

	case updateMsg:
		if views, ok := m.th.Current(); ok {
			m.comments = views
			m.loaded = true
		}
		return m, waitForUpdate(m.updates)

	case submitDoneMsg:
		m.submitting = false
		m.draft.Focus()
		// the thread clears its draft once the comment is created,
		// even when the refresh that follows fails
		if m.th.Draft() == "" {
			m.draft.Reset()
		}
		m.err = msg.err
		return m, nil
	}

	if !m.submitting {
		var cmd tea.Cmd
		m.draft, cmd = m.draft.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles key events of the thread view
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Refresh):
		return m, m.refreshComments()

	case key.Matches(msg, keys.Submit):
		if m.submitting {
			return m, nil
		}
		content := m.draft.Value()
		if strings.TrimSpace(content) == "" {
			return m, nil
		}

		m.th.SetDraft(content)
		m.submitting = true
		m.draft.Blur()
		return m, m.submit(content)
	}

	if m.submitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	return m, cmd
}

// View renders the thread
func (m Model) View() string {
	if m.quitting {
		return m.styles.Subtitle.Render("bye\n")
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(fmt.Sprintf("Comments · %s", m.th.PageID())))
	sb.WriteString("\n")

	switch {
	case !m.loaded && m.err == nil:
		sb.WriteString(m.spinner.View() + " loading comments...\n")
	case len(m.comments) == 0 && m.loaded:
		sb.WriteString(m.styles.Subtitle.Render("No comments yet.") + "\n")
	default:
		for i := range m.comments {
			sb.WriteString(m.renderComment(&m.comments[i]))
			sb.WriteString("\n")
		}
	}

	if m.err != nil {
		sb.WriteString(m.styles.Error.Render("error: "+m.err.Error()) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderDraft())
	sb.WriteString(m.styles.Help.Render("ctrl+s send • ctrl+r refresh • esc quit"))
	return sb.String()
}

// renderComment places owner comments on the right and guest comments on the left
func (m Model) renderComment(c *model.CommentViewModel) string {
	bubble, align := m.styles.Guest, lipgloss.Left
	if c.IsOwner {
		bubble, align = m.styles.Owner, lipgloss.Right
	}

	maxWidth := max(m.width*2/3, 20)
	body := bubble.MaxWidth(maxWidth).Render(strings.Join(c.Lines, "\n"))
	meta := m.styles.Meta.Render(fmt.Sprintf("%s · %s", c.User.Name, c.CreatedAt))
	block := lipgloss.JoinVertical(align, meta, body)

	return lipgloss.PlaceHorizontal(m.width, align, block)
}

func (m Model) renderDraft() string {
	if m.submitting || m.th.Loading() {
		return m.styles.Dimmed.Render(m.draft.View()) + "\n" +
			m.spinner.View() + m.styles.Dimmed.Render(" sending...") + "\n"
	}

	return m.styles.Box.Render(m.draft.View()) + "\n"
}
