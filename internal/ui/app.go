package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hostpanel/panelview/internal/prefs"
	"github.com/hostpanel/panelview/internal/render"
	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Controller *tabview.Controller
	Title      string
	Listing    string // prefs key for the remembered page size
	Columns    []string
	PollTick   time.Duration
	ThemeName  string
	Prefs      prefs.Prefs
	PrefsPath  string
	Refresh    func() // asks the poller for an immediate fetch
	Logger     *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	ctrl      *tabview.Controller
	title     string
	listing   string
	columns   []string
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	refresh   func()
	logger    *zap.Logger
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	cursor int // row index within the current page

	// Data state
	snapshot   state.Snapshot
	generation uint64 // last snapshot generation pushed into ctrl

	// Filter input
	filtering   bool
	filterInput textinput.Model
	filterPrev  string

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = tabview.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filter rows"
	input.CharLimit = 256

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		ctrl:        ctrl,
		title:       opts.Title,
		listing:     opts.Listing,
		columns:     opts.Columns,
		prefs:       opts.Prefs,
		prefsPath:   opts.PrefsPath,
		pollTick:    pollTick,
		refresh:     opts.Refresh,
		logger:      logger,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		filterInput: input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// applySnapshot records snap and pushes its items into the controller when
// the store has produced a newer generation.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	if snap.Generation == m.generation {
		return
	}
	m.generation = snap.Generation
	m.ctrl.SetItems(snap.Items)
	m.clampCursor(m.ctrl.ViewModel())
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	// Any key closes help.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	vm := m.ctrl.ViewModel()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(vm.Rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(vm.Rows)-1, 0)

	case key.Matches(msg, m.keys.NextPage):
		m.ctrl.SetPage(vm.CurrentPage + 1)
		m.cursor = 0

	case key.Matches(msg, m.keys.PrevPage):
		m.ctrl.SetPage(vm.CurrentPage - 1)
		m.cursor = 0

	case key.Matches(msg, m.keys.GrowPage):
		m.setPageSize(nextPageSize(vm.PageSize, 1))

	case key.Matches(msg, m.keys.ShrinkPage):
		m.setPageSize(nextPageSize(vm.PageSize, -1))

	case key.Matches(msg, m.keys.Sort):
		m.sortByColumn(vm, msg.String())

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(vm.Rows) {
			m.ctrl.ToggleSelect(vm.Rows[m.cursor].Item.Identity())
		}

	case key.Matches(msg, m.keys.SelectAll):
		m.ctrl.SelectAll()

	case key.Matches(msg, m.keys.DeselectAll):
		m.ctrl.DeselectAll()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterPrev = vm.FilterValue
		m.filterInput.SetValue(vm.FilterValue)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.ClearFilter):
		if vm.FilterValue != "" {
			m.ctrl.SetFilter("")
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.refresh()
		}
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
	}

	return m, nil
}

// handleFilterKey feeds the filter input; the controller filter follows every
// keystroke so the table narrows while typing.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.filtering = false
		m.filterInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilter):
		m.filtering = false
		m.filterInput.Blur()
		m.ctrl.SetFilter(m.filterPrev)
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filterInput.Value()
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := m.filterInput.Value(); value != before {
		m.ctrl.SetFilter(value)
		m.cursor = 0
	}
	return m, cmd
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) sortByColumn(vm tabview.ViewModel, digit string) {
	idx := int(digit[0]-'0') - 1
	columns := render.Columns(vm, m.columns)
	if idx < 0 || idx >= len(columns) {
		return
	}
	m.ctrl.SetSort(columns[idx])
}

func (m *Model) setPageSize(size int) {
	m.ctrl.SetPageSize(size)
	m.cursor = 0
	if m.listing == "" {
		return
	}
	m.prefs = m.prefs.WithPageSize(m.listing, size)
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

func (m *Model) clampCursor(vm tabview.ViewModel) {
	if m.cursor >= len(vm.Rows) {
		m.cursor = len(vm.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextPageSize steps through render.PageSizes. A size outside the list moves
// to its nearest neighbour in the requested direction.
func nextPageSize(current, step int) int {
	sizes := render.PageSizes
	rank := func(size int) int {
		if size == tabview.PageSizeAll {
			return int(^uint(0) >> 1)
		}
		return size
	}
	if step > 0 {
		for _, size := range sizes {
			if rank(size) > rank(current) {
				return size
			}
		}
		return sizes[len(sizes)-1]
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if rank(sizes[i]) < rank(current) {
			return sizes[i]
		}
	}
	return sizes[0]
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	vm := m.ctrl.ViewModel()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderTable(vm))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(vm))
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is done.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
