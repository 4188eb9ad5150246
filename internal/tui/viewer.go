// ABOUTME: Read-only bubbletea viewer for the posts in a PostStore.
// ABOUTME: Renders posts in a scrollable viewport and reloads from storage on demand.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
)

const emptyBoard = "No posts yet. Use the Discord bot to add posts!"

var (
	postTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mediaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// postsLoadedMsg carries a fresh read of the store.
type postsLoadedMsg struct {
	posts  []models.Post
	status storage.LoadStatus
}

// ViewerModel is the bubbletea model for browsing posts.
type ViewerModel struct {
	store    storage.PostStore
	posts    []models.Post
	status   storage.LoadStatus
	loaded   bool
	viewport viewport.Model
	ready    bool
	width    int
}

// NewViewerModel creates a viewer over store. Posts are read in Init.
func NewViewerModel(store storage.PostStore) ViewerModel {
	return ViewerModel{store: store, width: 80}
}

// Init implements tea.Model.
func (m ViewerModel) Init() tea.Cmd {
	return m.load()
}

func (m ViewerModel) load() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		posts, status := store.Load()
		return postsLoadedMsg{posts: posts, status: status}
	}
}

// Update implements tea.Model.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
		if height < 1 {
			height = 1
		}
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.renderPosts())
		return m, nil

	case postsLoadedMsg:
		m.posts = msg.posts
		m.status = msg.status
		m.loaded = true
		if m.ready {
			m.viewport.SetContent(m.renderPosts())
			m.viewport.GotoTop()
		}
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m ViewerModel) View() string {
	body := m.renderPosts()
	if m.ready {
		body = m.viewport.View()
	}
	return m.header() + "\n" + body + "\n" + m.footer()
}

// Posts returns the posts from the most recent load.
func (m ViewerModel) Posts() []models.Post {
	return m.posts
}

func (m ViewerModel) header() string {
	return brandStyle.Render("Podcast and Information Sharing Platform") + "\n" +
		stepStyle.Render(fmt.Sprintf("%d posts", len(m.posts)))
}

func (m ViewerModel) footer() string {
	return promptStyle.Render("[r]eload  [↑/↓] scroll  [q]uit")
}

func (m ViewerModel) renderPosts() string {
	if !m.loaded {
		return "Loading posts..."
	}

	var b strings.Builder
	if m.status == storage.LoadRecovered {
		b.WriteString(warnStyle.Render("⚠ The post file could not be read cleanly; showing what was recovered."))
		b.WriteString("\n\n")
	}
	if len(m.posts) == 0 {
		b.WriteString(emptyBoard)
		return b.String()
	}

	wrap := lipgloss.NewStyle().Width(m.width)
	for i, p := range m.posts {
		if i > 0 {
			b.WriteString(dividerStyle.Render(strings.Repeat("─", min(m.width, 40))))
			b.WriteString("\n")
		}
		b.WriteString(postTitleStyle.Render(p.Title))
		b.WriteString("\n")
		b.WriteString(wrap.Render(p.Content))
		b.WriteString("\n")
		if p.HasImage() {
			b.WriteString(mediaStyle.Render("🖼  " + p.ImageURL))
			b.WriteString("\n")
		}
		if p.HasVideo() {
			b.WriteString(mediaStyle.Render("▶  " + p.VideoURL))
			b.WriteString("\n")
		}
	}
	return b.String()
}
