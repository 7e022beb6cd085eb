package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	bviewport "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/basepath"
	"github.com/five82/shopfront/internal/dom"
	"github.com/five82/shopfront/internal/history"
	"github.com/five82/shopfront/internal/loop"
	"github.com/five82/shopfront/internal/storage"
	"github.com/five82/shopfront/internal/toast"
	"github.com/five82/shopfront/internal/viewport"
)

// ThemeStorageKey is the storage key the chosen theme persists under.
const ThemeStorageKey = "shopfront_theme"

// History is the session history the browser moves through.
type History interface {
	Location() history.Location
	Back() bool
	Forward() bool
	CanGoBack() bool
	CanGoForward() bool
}

// Navigator pushes an application path, like the router does for links.
type Navigator interface {
	Navigate(path string)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Document  *dom.Document
	History   History
	Navigator Navigator
	Base      basepath.Resolver
	Loop      *loop.Chan
	Tracker   *viewport.Tracker
	Toasts    *toast.Center
	// Storage keeps the theme choice. Nothing is persisted when nil.
	Storage storage.KV
	// ThemeName overrides the stored theme.
	ThemeName string
	LogPath   string
	Logger    *zap.Logger
}

// Model is the terminal browser: it lays the document out, moves focus
// between its controls, and turns keys into DOM events.
type Model struct {
	ctx     context.Context
	doc     *dom.Document
	hist    History
	nav     Navigator
	base    basepath.Resolver
	loop    *loop.Chan
	tracker *viewport.Tracker
	toasts  *toast.Center
	kv      storage.KV
	logPath string
	log     *zap.Logger

	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	// page state
	vp       bviewport.Model
	pg       page
	rev      uint64
	path     string
	focused  dom.Element
	focusKey string
	keyOf    map[dom.Element]string

	editing bool
	field   textinput.Model

	addressing bool
	address    textinput.Model

	showHelp bool
	logs     logState
}

// New creates the browser model.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = &viewport.Tracker{}
	}

	themeName := opts.ThemeName
	if themeName == "" && opts.Storage != nil {
		themeName, _ = opts.Storage.Get(ThemeStorageKey)
	}
	if themeName == "" {
		themeName = DefaultTheme
	}

	address := textinput.New()
	address.Prompt = "go to: "
	address.Placeholder = "/product/..."
	address.CharLimit = 256

	m := &Model{
		ctx:     ctx,
		doc:     opts.Document,
		hist:    opts.History,
		nav:     opts.Navigator,
		base:    opts.Base,
		loop:    opts.Loop,
		tracker: tracker,
		toasts:  opts.Toasts,
		kv:      opts.Storage,
		logPath: opts.LogPath,
		log:     logger,
		theme:   GetTheme(themeName),
		keys:    DefaultKeyMap(),
		address: address,
	}
	if m.hist != nil {
		m.path = m.hist.Location().Path
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitLoopCmd(m.ctx, m.loop), tickCmd(ToastTick))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		mdl, cmd := m.handleKey(msg)
		m.settle()
		return mdl, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.settle()
		return m, nil

	case loopReadyMsg:
		if m.loop != nil {
			m.loop.Drain()
		}
		m.settle()
		return m, waitLoopCmd(m.ctx, m.loop)

	case tickMsg:
		return m, tickCmd(ToastTick)

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil
	}

	if m.editing || m.addressing {
		var cmd tea.Cmd
		if m.editing {
			m.field, cmd = m.field.Update(msg)
		} else {
			m.address, cmd = m.address.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.logs.open {
		return m.renderLogs()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	h := max(height-chromeRows, 1)
	if !m.ready {
		m.vp = bviewport.New(width, h)
		m.ready = true
	} else {
		m.vp.Width = width
		m.vp.Height = h
	}
	m.relayout()
}

// handleKey processes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.logs.open {
		return m.handleLogsKey(msg)
	}
	if m.addressing {
		return m.handleAddressKey(msg)
	}
	if m.editing {
		return m.handleFieldKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Logs):
		return m, m.openLogs()

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Activate):
		return m, m.activate()

	case key.Matches(msg, m.keys.Edit):
		if isTextInput(m.focused) {
			return m, m.startEditing()
		}

	case key.Matches(msg, m.keys.Escape):
		m.doc.Dispatch(&dom.Event{Type: "keydown", Target: m.doc.Body(), Key: "Escape"})

	case key.Matches(msg, m.keys.Back):
		if m.hist != nil {
			m.hist.Back()
		}

	case key.Matches(msg, m.keys.Forward):
		if m.hist != nil {
			m.hist.Forward()
		}

	case key.Matches(msg, m.keys.Address):
		return m, m.startAddressing()

	case key.Matches(msg, m.keys.Down):
		m.vp.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.vp.ScrollUp(1)
	case key.Matches(msg, m.keys.PageDown):
		m.vp.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.vp.PageUp()
	case key.Matches(msg, m.keys.Top):
		m.vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.vp.GotoBottom()
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.kv != nil {
		if err := m.kv.Set(ThemeStorageKey, m.theme.Name); err != nil {
			m.log.Warn("persist theme", zap.Error(err))
		}
	}
	m.relayout()
}

// activate performs the focused control's default action.
func (m *Model) activate() tea.Cmd {
	el := m.focused
	if el.IsZero() {
		return nil
	}
	switch {
	case isCheckbox(el):
		el.SetChecked(!el.Checked())
		m.dispatch("change", el, "")
	case isTextInput(el):
		return m.startEditing()
	case el.Tag() == "select":
		if next, ok := nextOption(el); ok {
			el.SetValue(next)
			m.dispatch("change", el, "")
		}
	default:
		if m.dispatch("click", el, "") && el.Tag() == "a" {
			if href := el.Attr("href"); href != "" && m.nav != nil {
				m.nav.Navigate(m.base.AppPath(href))
			}
		}
	}
	return nil
}

func (m *Model) dispatch(eventType string, el dom.Element, keyName string) bool {
	return m.doc.Dispatch(&dom.Event{Type: eventType, Target: el, Key: keyName})
}

func (m *Model) startEditing() tea.Cmd {
	field := textinput.New()
	field.Prompt = ""
	field.CharLimit = 128
	field.Width = MaxFieldWidth
	field.TextStyle = m.theme.Styles().Editing
	field.SetValue(m.focused.Value())
	field.CursorEnd()
	m.field = field
	m.editing = true
	cmd := m.field.Focus()
	m.relayout()
	return cmd
}

// handleFieldKey edits the focused input. Every edit fires input; enter
// fires keydown Enter then change; esc and tab leave the field with blur
// then change.
func (m *Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	el := m.focused
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Activate):
		m.stopEditing()
		m.dispatch("keydown", el, "Enter")
		m.dispatch("change", el, "")
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.stopEditing()
		m.dispatch("blur", el, "")
		m.dispatch("change", el, "")
		return m, nil
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		m.stopEditing()
		m.dispatch("blur", el, "")
		m.dispatch("change", el, "")
		step := 1
		if key.Matches(msg, m.keys.Prev) {
			step = -1
		}
		m.moveFocus(step)
		return m, nil
	}

	before := m.field.Value()
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	if after := m.field.Value(); after != before {
		el.SetValue(after)
		m.dispatch("input", el, "")
	}
	m.relayout()
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.field.Blur()
	m.relayout()
}

func (m *Model) startAddressing() tea.Cmd {
	m.addressing = true
	current := ""
	if m.hist != nil {
		current = m.hist.Location().String()
	}
	m.address.SetValue(current)
	m.address.CursorEnd()
	return m.address.Focus()
}

func (m *Model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Activate):
		m.addressing = false
		m.address.Blur()
		if target := strings.TrimSpace(m.address.Value()); target != "" && m.nav != nil {
			m.nav.Navigate(m.base.AppPath(target))
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.addressing = false
		m.address.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

// moveFocus focuses the next or previous control. With nothing focused the
// first control on screen is taken.
func (m *Model) moveFocus(step int) {
	n := len(m.pg.focusables)
	if n == 0 {
		return
	}
	i := m.pg.indexOf(m.focused)
	switch {
	case i < 0:
		i = m.firstOnScreen()
		if step < 0 {
			i = n - 1
		}
	default:
		i = (i + step + n) % n
	}
	m.focus(m.pg.focusables[i])
}

func (m *Model) firstOnScreen() int {
	top := m.vp.YOffset
	for i, el := range m.pg.focusables {
		if s, ok := m.pg.spanOf(el); ok && s.top >= top {
			return i
		}
	}
	return 0
}

func (m *Model) focus(el dom.Element) {
	m.focused = el
	m.focusKey = m.keyOf[el]
	m.relayout()
	m.scrollIntoView(el)
}

func (m *Model) scrollIntoView(el dom.Element) {
	s, ok := m.pg.spanOf(el)
	if !ok {
		return
	}
	switch {
	case s.top < m.vp.YOffset:
		m.vp.SetYOffset(s.top)
	case s.bottom >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(s.bottom - m.vp.Height + 1)
	}
}

// settle lays the page out again after the document changed and reports
// visibility to observers until neither changes.
func (m *Model) settle() {
	if !m.ready || m.doc == nil {
		return
	}
	for range maxSettlePasses {
		if m.hist != nil {
			if path := m.hist.Location().Path; path != m.path {
				m.path = path
				m.focused = dom.Element{}
				m.focusKey = ""
				m.editing = false
				m.vp.GotoTop()
				m.relayout()
			}
		}
		if m.doc.Revision() != m.rev {
			m.relayout()
		}
		if m.tracker.Observing() > 0 {
			m.tracker.Update(m.visible)
		}
		if m.doc.Revision() == m.rev {
			return
		}
	}
}

func (m *Model) relayout() {
	if !m.ready || m.doc == nil {
		return
	}
	m.pg = m.layout()
	if !m.focused.IsZero() && m.pg.indexOf(m.focused) < 0 {
		m.focused = dom.Element{}
		if el, ok := m.findByKey(m.focusKey); ok {
			m.focused = el
			m.pg = m.layout()
		} else {
			m.editing = false
		}
	}
	m.rev = m.doc.Revision()
	m.vp.SetContent(strings.Join(m.pg.lines, "\n"))
}

func (m *Model) layout() page {
	field := ""
	if m.editing {
		field = m.field.View()
	}
	pg := layoutDocument(m.doc, layoutOptions{
		width:   m.vp.Width,
		styles:  m.theme.Styles(),
		focused: m.focused,
		field:   field,
	})
	m.keyOf = focusKeys(pg.focusables)
	return pg
}

func (m *Model) findByKey(k string) (dom.Element, bool) {
	if k == "" {
		return dom.Element{}, false
	}
	for el, candidate := range m.keyOf {
		if candidate == k {
			return el, true
		}
	}
	return dom.Element{}, false
}

// visible reports whether el's lines intersect the viewport widened by the
// observer's margin, by at least the observer's threshold.
func (m *Model) visible(el dom.Element, opts viewport.Options) bool {
	s, ok := m.pg.spanOf(el)
	if !ok {
		return false
	}
	top := m.vp.YOffset - opts.RootMargin
	bottom := m.vp.YOffset + m.vp.Height - 1 + opts.RootMargin
	lo, hi := max(s.top, top), min(s.bottom, bottom)
	if hi < lo {
		return false
	}
	total := s.bottom - s.top + 1
	return float64(hi-lo+1)/float64(total) >= opts.Threshold
}

// Messages

type tickMsg time.Time

type loopReadyMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitLoopCmd blocks until tasks are posted to the loop.
func waitLoopCmd(ctx context.Context, l *loop.Chan) tea.Cmd {
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-l.Ready():
			return loopReadyMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
