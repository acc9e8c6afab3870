package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sheepfold/internal/core"
	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

// Layout constants
const (
	minSceneHeight = 6
	maxTableRows   = 8
	chromeLines    = 5 // Header, detail, status, help and a spacer
	storeTimeout   = 5 * time.Second
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdopt
	modeRename
	modeNote
	modeProfile
	modeConfirmDelete
)

// Options configures a pasture view.
type Options struct {
	Admin  bool         // Lift the daily prayer limit
	Params scene.Params // Scene generation parameters
	Width  int          // Initial terminal size
	Height int
}

// rosterMsg carries a snapshot published by the pasture.
type rosterMsg struct {
	roster *pasture.Roster
}

// resultMsg reports the end of a store-backed action.
type resultMsg struct {
	status string
	err    error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("209"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Model is the Bubble Tea model of one owner's pasture.
type Model struct {
	pasture *pasture.Pasture
	engine  *engine.Engine
	watcher *pasture.Watcher
	roster  *pasture.Roster
	scene   scene.Scene
	screen  *core.Screen

	table table.Model
	input textinput.Model
	help  help.Model
	keys  KeyMap

	mode      inputMode
	status    string
	statusErr bool
	admin     bool
	frame     int
	width     int
	height    int
	quitting  bool
}

// NewModel creates the view for p. Snapshots arrive through w, which the
// caller owns and stops.
func NewModel(p *pasture.Pasture, w *pasture.Watcher, opts Options) Model {
	params := opts.Params
	if params.Attempts <= 0 {
		params = scene.DefaultParams()
	}

	input := textinput.New()
	input.CharLimit = 40

	h := help.New()
	h.ShowAll = false

	m := Model{
		pasture: p,
		engine:  p.Engine(),
		watcher: w,
		roster:  p.Snapshot(),
		scene:   scene.GenerateWithParams(p.OwnerID(), params),
		screen:  core.NewScreen(0, 0),
		input:   input,
		help:    h,
		keys:    DefaultKeyMap(),
		admin:   opts.Admin,
		width:   max(opts.Width, 40),
		height:  max(opts.Height, 20),
	}
	m.table = m.createTable()
	m.layout()
	m.refreshRows()
	if m.roster.Len() == 0 {
		m.setStatus("Your pasture is empty. Press a to adopt a lamb.", false)
	}
	return m
}

// Init starts the animation and the snapshot subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), waitForRoster(m.watcher))
}

func waitForRoster(w *pasture.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case r := <-w.Updates():
			return rosterMsg{roster: r}
		case <-w.Done():
			return nil
		}
	}
}

func (m *Model) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *Model) columns() []table.Column {
	cols := []table.Column{
		{Title: "Name", Width: 12},
		{Title: "Stage", Width: 15},
		{Title: "Health", Width: 7},
		{Title: "Status", Width: 22},
		{Title: "Prayers", Width: 10},
		{Title: "Care", Width: 5},
	}
	// Drop the widest column on narrow terminals.
	if m.width < 80 {
		cols[3].Width = 9
	}
	return cols
}

// layout splits the height between the scene and the table.
func (m *Model) layout() {
	rows := core.Clamp(m.roster.Len(), 1, maxTableRows)
	tableHeight := rows + 2
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 4
	}
	sceneHeight := max(m.height-tableHeight-chromeLines-helpLines, minSceneHeight)

	m.screen.Resize(m.width, sceneHeight)
	m.table.SetColumns(m.columns())
	m.table.SetHeight(tableHeight)
	m.table.SetWidth(m.width)
	m.help.Width = m.width
}

func (m *Model) refreshRows() {
	now := time.Now()
	rows := make([]table.Row, 0, m.roster.Len())
	for _, s := range m.roster.Sheep {
		rows = append(rows, table.Row{
			s.Name,
			m.engine.StageInfo(s.Stage).Name,
			fmt.Sprintf("%.0f", s.Health),
			flock.StatusText(s),
			m.prayerColumn(s, now),
			fmt.Sprintf("%d", s.CareLevel),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) prayerColumn(s flock.Sheep, now time.Time) string {
	rules := m.engine.Rules()
	if s.Status == flock.StatusDead {
		return fmt.Sprintf("rite %d/%d", m.engine.EffectiveResurrection(s, now), rules.Resurrection.DaysRequired)
	}
	return fmt.Sprintf("%d/%d", m.engine.EffectivePrayedCount(s, now), rules.Care.DailyLimit)
}

func (m *Model) selected() (flock.Sheep, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= m.roster.Len() {
		return flock.Sheep{}, false
	}
	return m.roster.Sheep[i], true
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) setRoster(r *pasture.Roster) {
	if r == nil {
		return
	}
	grew := r.Len() != m.roster.Len()
	m.roster = r
	if grew {
		m.layout()
	}
	m.refreshRows()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case frameMsg:
		m.frame++
		return m, frameCmd()

	case rosterMsg:
		m.setRoster(msg.roster)
		return m, waitForRoster(m.watcher)

	case resultMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(msg.status, false)
		}
		m.setRoster(m.pasture.Snapshot())
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m.handleBrowseKey(msg)
		}
		return m.handleInputKey(msg)
	}

	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Pray):
		m.pray()
		return m, nil

	case key.Matches(msg, m.keys.Adopt):
		cmd := m.prompt(modeAdopt, "", "Name your lamb: ")
		return m, cmd

	case key.Matches(msg, m.keys.Rename):
		if s, ok := m.selected(); ok {
			cmd := m.prompt(modeRename, s.Name, "New name: ")
			return m, cmd
		}

	case key.Matches(msg, m.keys.Note):
		if s, ok := m.selected(); ok {
			cmd := m.prompt(modeNote, s.Note, "Note: ")
			return m, cmd
		}

	case key.Matches(msg, m.keys.Profile):
		cmd := m.prompt(modeProfile, m.roster.Profile.Name, "Shepherd name: ")
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if s, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.setStatus(fmt.Sprintf("Release %s forever? (y/n)", s.Name), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) prompt(mode inputMode, value, prompt string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.setStatus("", false)
	return m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmDelete {
		m.mode = modeBrowse
		if msg.String() != "y" {
			m.setStatus("Kept.", false)
			return m, nil
		}
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, deleteCmd(m.pasture, s)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.input.Blur()
		m.setStatus("", false)
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		mode, value := m.mode, m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		cmd := m.submit(mode, value)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit applies a finished prompt. In-memory edits apply at once; edits
// that write through to the store run as commands.
func (m *Model) submit(mode inputMode, value string) tea.Cmd {
	switch mode {
	case modeAdopt:
		s, err := m.pasture.Adopt(value)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.setRoster(m.pasture.Snapshot())
		m.table.SetCursor(m.roster.Len() - 1)
		m.setStatus(fmt.Sprintf("Welcome, %s, your new %s.", s.Name, flock.Relationship(s.Name)), false)

	case modeRename, modeNote:
		s, ok := m.selected()
		if !ok {
			return nil
		}
		var ann engine.Annotation
		if mode == modeRename {
			ann.Name = &value
		} else {
			ann.Note = &value
		}
		if _, err := m.pasture.Annotate(s.ID, ann); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.setRoster(m.pasture.Snapshot())
		m.setStatus("Saved.", false)

	case modeProfile:
		return renameProfileCmd(m.pasture, value)
	}
	return nil
}

func (m *Model) pray() {
	s, ok := m.selected()
	if !ok {
		m.setStatus("No sheep to pray for. Press a to adopt one.", true)
		return
	}
	next, out, err := m.pasture.Pray(s.ID, engine.PrayOptions{Admin: m.admin})
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setRoster(m.pasture.Snapshot())
	m.setStatus(Describe(m.engine, next, out), false)
}

// Describe turns a prayer outcome into a line for the shepherd.
func Describe(eng *engine.Engine, s flock.Sheep, out engine.Outcome) string {
	switch out.Kind {
	case engine.OutcomeEvolved:
		return fmt.Sprintf("%s grew into a %s!", s.Name, eng.StageInfo(out.To).Name)
	case engine.OutcomeRitualStep:
		return fmt.Sprintf("Ritual day %d of %d for %s. Come back tomorrow.", out.Progress, out.Required, s.Name)
	case engine.OutcomeRevived:
		return fmt.Sprintf("%s has returned to the flock!", s.Name)
	default:
		return fmt.Sprintf("You prayed for %s. %d prayers left today.", s.Name, out.Remaining)
	}
}

func deleteCmd(p *pasture.Pasture, s flock.Sheep) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := p.Delete(ctx, s.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("%s was released.", s.Name)}
	}
}

func renameProfileCmd(p *pasture.Pasture, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		prof, err := p.Rename(ctx, name)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("Welcome back, %s.", prof.Name)}
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	sel, _ := m.selected()
	drawScene(m.screen, m.scene, m.roster.Sheep, sel.ID, m.frame)
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	if m.roster.Len() == 0 {
		b.WriteString(mutedStyle.Render("  No sheep yet."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.detail(sel))
	b.WriteString("\n")

	switch {
	case m.mode != modeBrowse && m.mode != modeConfirmDelete:
		b.WriteString(promptStyle.Render(m.input.View()))
	case m.statusErr:
		b.WriteString(errorStyle.Render(m.status))
	default:
		b.WriteString(okStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) header() string {
	counts := m.roster.Counts()
	title := titleStyle.Render(fmt.Sprintf("%s's pasture", m.roster.Profile.Name))
	summary := fmt.Sprintf("  %d sheep, %d need prayer, %d resting",
		m.roster.Len(),
		counts[flock.StatusSick]+counts[flock.StatusInjured],
		counts[flock.StatusDead],
	)
	if m.admin {
		summary += "  [admin]"
	}
	if m.pasture.LocalOnly() {
		summary += "  [offline: changes kept locally]"
	}
	return title + mutedStyle.Render(summary)
}

func (m Model) detail(s flock.Sheep) string {
	if s.ID == "" {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%s, %s", s.Name, flock.Relationship(s.Name)),
		m.engine.StageInfo(s.Stage).Description,
	}
	if s.Note != "" {
		parts = append(parts, "note: "+s.Note)
	}
	if s.Plan.Scheduled() {
		parts = append(parts, "plan: "+s.Plan.Time.In(m.engine.Location()).Format("Jan 02 15:04"))
	}
	return mutedStyle.Render("  " + strings.Join(parts, " · "))
}

// Run starts the pasture view on the local terminal and blocks until the
// user quits.
func Run(p *pasture.Pasture, opts Options) error {
	w, stop := p.Watch()
	defer stop()

	prog := tea.NewProgram(NewModel(p, w, opts), tea.WithAltScreen())
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
