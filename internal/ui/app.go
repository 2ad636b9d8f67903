package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/i18n"
	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/otel"
)

// focusArea is the part of the screen receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusPosts
)

// PollerState is the read-only view of the poller shown in the status bar.
type PollerState interface {
	State() coord.State
	Ticks() int
}

// ObsConfig groups observability dependencies.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig wires an App. Session is required; everything else is optional.
type AppConfig struct {
	Session    *feed.Session
	Fetch      func(url string) tea.Cmd // returns a Cmd producing FeedFetched
	Poller     PollerState
	Translator *i18n.Translator
	Seeds      []string // submitted once at startup
	Obs        ObsConfig
	Debug      bool // start with the debug overlay open
}

// App is the root Bubble Tea model.
// All session mutations happen here, on the update loop. Network work runs
// in commands and comes back as FeedFetched or PollResult messages.
type App struct {
	session *feed.Session
	fetch   func(url string) tea.Cmd
	poller  PollerState
	tr      *i18n.Translator
	seeds   []string
	events  *otel.Logger
	ring    *otel.RingBuffer

	input   textinput.Model
	spinner spinner.Model
	modal   viewport.Model
	help    help.Model

	focus        focusArea
	cursor       int
	pending      int // interactive fetches in flight
	modalOpen    bool
	modalIdx     int
	debugVisible bool
	width        int
	height       int
	ready        bool
}

// NewApp creates a new App.
func NewApp(cfg AppConfig) App {
	tr := cfg.Translator
	if tr == nil {
		tr = i18n.New(language.Russian)
	}

	ti := textinput.New()
	ti.Placeholder = tr.T("input")
	ti.Prompt = "› "
	ti.CharLimit = 2048
	ti.Width = 48
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusBarKey

	return App{
		session: cfg.Session,
		fetch:   cfg.Fetch,
		poller:  cfg.Poller,
		tr:      tr,
		seeds:   cfg.Seeds,
		events:  cfg.Obs.Logger,
		ring:    cfg.Obs.Ring,
		input:   ti,
		spinner: s,
		modal:   viewport.New(60, 10),
		help:    help.New(),
		focus:   focusInput,

		debugVisible: cfg.Debug,
	}
}

// Init starts the cursor blink and submits the seed feeds.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	for _, seed := range a.seeds {
		cmds = append(cmds, func() tea.Msg { return SubmitURL{URL: seed} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case SubmitURL:
		return a.submit(msg.URL)

	case FeedFetched:
		if a.pending > 0 {
			a.pending--
		}
		up := a.session.Complete(msg.URL, msg.Doc, msg.Err)
		// Keep whatever was typed while the fetch was in flight.
		if up.Status == feed.StatusValid && strings.TrimSpace(a.input.Value()) == msg.URL {
			a.input.Reset()
		}
		return a, nil

	case PollResult:
		a.session.ApplyPoll(msg.URL, msg.Doc, msg.Err)
		return a, nil

	case spinner.TickMsg:
		if a.pending == 0 {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit validates raw and starts the fetch when it is accepted.
// Rejections are reflected in the session status right away.
func (a App) submit(raw string) (tea.Model, tea.Cmd) {
	url, verdict := a.session.Begin(raw)
	if verdict != feed.VerdictAccepted || a.fetch == nil {
		return a, nil
	}

	a.pending++
	cmds := []tea.Cmd{a.fetch(url)}
	if a.pending == 1 {
		cmds = append(cmds, a.spinner.Tick)
	}
	return a, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch {
	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil
	case key.Matches(msg, keys.Language):
		a.switchLanguage()
		return a, nil
	}

	if a.debugVisible {
		if msg.Type == tea.KeyEsc {
			a.debugVisible = false
		}
		return a, nil
	}

	if a.modalOpen {
		if key.Matches(msg, keys.Close) {
			a.modalOpen = false
			return a, nil
		}
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Update(msg)
		return a, cmd
	}

	if a.focus == focusInput {
		switch {
		case key.Matches(msg, keys.Submit):
			return a.submit(a.input.Value())
		case key.Matches(msg, keys.Focus):
			a.focus = focusPosts
			a.input.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	total := a.session.Board().PostCount()
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Focus):
		a.focus = focusInput
		return a, a.input.Focus()

	case key.Matches(msg, keys.Down):
		if a.cursor < total-1 {
			a.cursor++
		}

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, keys.Top):
		a.cursor = 0

	case key.Matches(msg, keys.Bottom):
		if total > 0 {
			a.cursor = total - 1
		}

	case key.Matches(msg, keys.View):
		a.openModal()
	}
	return a, nil
}

// openModal shows the selected post and marks it read.
func (a *App) openModal() {
	p, ok := a.session.Board().Post(a.cursor)
	if !ok {
		return
	}
	a.session.MarkRead(p.Link)
	a.modalOpen = true
	a.modalIdx = a.cursor
	a.refreshModal()
	a.modal.GotoTop()
}

func (a *App) refreshModal() {
	p, ok := a.session.Board().Post(a.modalIdx)
	if !ok {
		return
	}
	a.modal.SetContent(a.modalBody(p))
}

func (a *App) switchLanguage() {
	lang := a.tr.Next()
	a.input.Placeholder = a.tr.T("input")
	if a.modalOpen {
		a.refreshModal()
	}
	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLanguage, Comp: "ui", Msg: lang.String()})
	logging.Debug("language changed", "lang", lang.String())
}

func (a *App) resize() {
	inputWidth := a.width - lipgloss.Width(a.tr.T("button")) - 12
	if inputWidth < 10 {
		inputWidth = 10
	}
	a.input.Width = inputWidth
	a.help.Width = a.width

	w, h := a.modalSize()
	a.modal.Width = w
	a.modal.Height = h
	if a.modalOpen {
		a.refreshModal()
	}
}

// Cursor returns the selected post index (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Pending returns the number of interactive fetches in flight (for testing).
func (a App) Pending() int {
	return a.pending
}

// ModalOpen reports whether the post detail overlay is shown (for testing).
func (a App) ModalOpen() bool {
	return a.modalOpen
}

// InputValue returns the form text (for testing).
func (a App) InputValue() string {
	return a.input.Value()
}
