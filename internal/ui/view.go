package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/feed"
)

// modalMaxWidth caps the detail overlay on wide terminals.
const modalMaxWidth = 80

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return a.tr.T("loading") + "..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	if a.modalOpen {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.modalView())
	}

	header := a.headerView()
	bar := a.statusBar()
	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(bar)
	return lipgloss.JoinVertical(lipgloss.Left, header, a.panelsView(bodyHeight), bar)
}

// headerView renders title, form, example and the current status message.
func (a App) headerView() string {
	st := a.session.Status()

	box := InputStyle
	if st.IsFailure() {
		box = box.BorderForeground(colorDanger)
	}
	form := lipgloss.JoinHorizontal(lipgloss.Center,
		box.Render(a.input.View()),
		" ",
		ButtonStyle.Render(a.tr.T("button")),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(a.tr.T("title")),
		SubtitleStyle.Render(a.tr.T("subtitle")),
		form,
		ExampleStyle.Render(a.tr.T("example")),
		a.statusLine(st),
	)
}

// statusLine renders the message for st. It is re-translated on every
// render, so switching language never changes which status is shown.
func (a App) statusLine(st feed.Status) string {
	if a.pending > 0 {
		return SubtitleStyle.Render(a.spinner.View() + " " + a.tr.T("loading"))
	}
	msg := a.tr.T(st.MessageKey())
	switch {
	case st == feed.StatusValid:
		return SuccessStyle.Render(msg)
	case st.IsFailure():
		return ErrorStyle.Render(msg)
	}
	return " "
}

// panelsView renders the feeds and posts panels side by side.
func (a App) panelsView(height int) string {
	if height < 4 {
		height = 4
	}
	inner := height - 2 // borders

	feedsWidth := a.width / 3
	if feedsWidth < 24 {
		feedsWidth = 24
	}
	postsWidth := a.width - feedsWidth
	if postsWidth < 24 {
		postsWidth = 24
	}

	postsFrame := PanelStyle
	if a.focus == focusPosts {
		postsFrame = PanelFocusedStyle
	}

	feeds := PanelStyle.Width(feedsWidth - 2).Height(inner).Render(a.feedsPanel(feedsWidth-2, inner))
	posts := postsFrame.Width(postsWidth - 2).Height(inner).Render(a.postsPanel(postsWidth-2, inner))
	return lipgloss.JoinHorizontal(lipgloss.Top, feeds, posts)
}

// feedsPanel lists feed entries in order of first load.
func (a App) feedsPanel(width, height int) string {
	lines := []string{PanelHeader.Render(a.tr.T("feeds"))}
	for _, f := range a.session.Board().Feeds() {
		title := f.Title
		if title == "" {
			title = f.URL
		}
		lines = append(lines, FeedTitle.Render(truncate(title, width-2)))
		if f.Description != "" {
			lines = append(lines, FeedDescription.Render(truncate(f.Description, width-2)))
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// postsPanel lists post entries, scrolled so the cursor stays visible.
func (a App) postsPanel(width, height int) string {
	lines := []string{PanelHeader.Render(a.tr.T("posts"))}
	rows := height - 1
	posts := a.session.Board().Posts()
	from := scrollOffset(a.cursor, len(posts), rows)

	for i := from; i < len(posts) && i < from+rows; i++ {
		p := posts[i]
		selected := a.focus == focusPosts && i == a.cursor

		title := p.Title
		if title == "" {
			title = p.Link
		}
		if selected {
			label := " [" + a.tr.T("view") + "]"
			title = truncate(title, width-2-runewidth.StringWidth(label)) + label
		} else {
			title = truncate(title, width-2)
		}

		style := NormalItem
		switch {
		case selected:
			style = SelectedItem
		case p.Read:
			style = ReadItem
		}
		lines = append(lines, style.Render(title))
	}
	return strings.Join(lines, "\n")
}

// scrollOffset returns the first visible row so cursor is on screen.
func scrollOffset(cursor, total, rows int) int {
	if rows <= 0 || total <= rows {
		return 0
	}
	off := cursor - rows + 1
	if off < 0 {
		off = 0
	}
	if off > total-rows {
		off = total - rows
	}
	return off
}

// statusBar renders poller state, counts and key hints.
func (a App) statusBar() string {
	state := a.tr.T("idle")
	if a.poller != nil && a.poller.State() == coord.StateArmed {
		state = a.tr.T("polling")
	}
	board := a.session.Board()
	left := fmt.Sprintf(" %s · %s %d · %s %d ",
		state,
		a.tr.T("feeds"), board.FeedCount(),
		a.tr.T("posts"), board.PostCount(),
	)

	hints := a.help.ShortHelpView(keys.ShortHelp())
	padding := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if padding < 0 {
		// Not enough room; drop the hints.
		hints = ""
		padding = 0
	}
	return StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + hints)
}

// modalSize returns the viewport size of the detail overlay.
func (a App) modalSize() (int, int) {
	w := a.width - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 20 {
		w = 20
	}
	h := a.height - 12
	if h < 3 {
		h = 3
	}
	return w, h
}

// modalBody is the scrollable part of the overlay.
func (a App) modalBody(p feed.Post) string {
	w, _ := a.modalSize()
	desc := lipgloss.NewStyle().Width(w).Render(p.Description)
	return desc + "\n\n" + a.tr.T("readFull") + ": " + LinkStyle.Render(p.Link)
}

func (a App) modalView() string {
	p, _ := a.session.Board().Post(a.modalIdx)
	w, _ := a.modalSize()
	footer := StatusBarKey.Render("esc") + StatusBarText.Render(" "+a.tr.T("close"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		ModalTitle.Width(w).Render(p.Title),
		"",
		a.modal.View(),
		"",
		footer,
	)
	return ModalStyle.Render(content)
}

// truncate fits s on one line of at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
