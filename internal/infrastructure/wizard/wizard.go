package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/domain"
)

type (
	wizardState int
	wizardField int

	initWizardModel struct {
		state     wizardState
		cfg       application.Config
		cursor    wizardField
		confirmed bool
		aborted   bool
	}
)

const (
	stateIntro wizardState = iota
	stateEdit
	stateConfirm
)

const (
	fieldLow wizardField = iota
	fieldCaution
	fieldWidth
	fieldCount
)

const (
	thresholdStep = 5
	widthStep     = 5
	minWidth      = 20
	maxWidth      = 200
)

func Run(cfg application.Config, stdout io.Writer, stdin io.Reader) (application.Config, bool, error) {
	return runInitWizard(cfg, stdout, stdin)
}

func runInitWizard(cfg application.Config, stdout io.Writer, stdin io.Reader) (application.Config, bool, error) {
	model := newInitWizardModel(cfg)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return cfg, false, err
	}
	finalModel, ok := res.(*initWizardModel)
	if !ok {
		return cfg, false, fmt.Errorf("unexpected wizard state")
	}
	if finalModel.aborted || !finalModel.confirmed {
		return cfg, false, nil
	}
	return finalModel.toConfig(), true, nil
}

func newInitWizardModel(cfg application.Config) *initWizardModel {
	if cfg.Width <= 0 {
		cfg.Width = application.DefaultWidth
	}
	if cfg.Thresholds.Validate() != nil {
		cfg.Thresholds = domain.DefaultThresholds()
	}
	cfg.Exclude = append([]string(nil), cfg.Exclude...)
	return &initWizardModel{
		state: stateIntro,
		cfg:   cfg,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			switch m.state {
			case stateIntro:
				m.state = stateEdit
			case stateEdit:
				m.state = stateConfirm
			case stateConfirm:
				m.confirmed = true
				return m, tea.Quit
			}
		case "esc":
			if m.state == stateConfirm {
				m.state = stateEdit
			}
		case "up":
			if m.state == stateEdit {
				m.moveCursor(-1)
			}
		case "down":
			if m.state == stateEdit {
				m.moveCursor(1)
			}
		case "left", "-":
			if m.state == stateEdit {
				m.adjustSelection(-1)
			}
		case "right", "+":
			if m.state == stateEdit {
				m.adjustSelection(1)
			}
		}
	}
	return m, nil
}

func (m *initWizardModel) View() string {
	switch m.state {
	case stateIntro:
		return m.viewIntro()
	case stateEdit:
		return m.viewEdit()
	case stateConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

func (m *initWizardModel) moveCursor(delta int) {
	m.cursor += wizardField(delta)
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= fieldCount {
		m.cursor = fieldCount - 1
	}
}

// adjustSelection moves the selected value by one step in the given
// direction. Low never passes caution: moving one drags the other along.
func (m *initWizardModel) adjustSelection(direction int) {
	t := &m.cfg.Thresholds
	switch m.cursor {
	case fieldLow:
		t.Low = clamp(t.Low+float64(direction*thresholdStep), 0, 100)
		if t.Low > t.Caution {
			t.Caution = t.Low
		}
	case fieldCaution:
		t.Caution = clamp(t.Caution+float64(direction*thresholdStep), 0, 100)
		if t.Caution < t.Low {
			t.Low = t.Caution
		}
	case fieldWidth:
		m.cfg.Width = int(clamp(float64(m.cfg.Width+direction*widthStep), minWidth, maxWidth))
	}
}

func (m *initWizardModel) viewIntro() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\ncovtable init wizard\n\n")
	fmt.Fprintf(&b, "Rows for files under %s/ in %s are colored by line coverage.\n\n", m.cfg.SourceDir, m.cfg.Report)
	fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewEdit() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReview and adjust the table\n\n")
	fmt.Fprintf(&b, "Use ↑/↓ to move, ←/→ or +/- to change values.\n\n")
	fields := []string{
		fmt.Sprintf("red at or below:    %.0f%%", m.cfg.Thresholds.Low),
		fmt.Sprintf("yellow at or below: %.0f%%", m.cfg.Thresholds.Caution),
		fmt.Sprintf("filename column:    %d", m.cfg.Width),
	}
	for idx, line := range fields {
		prefix := "  "
		if m.cursor == wizardField(idx) {
			prefix = "> "
		}
		fmt.Fprintf(&b, "%s%s\n", prefix, line)
	}
	fmt.Fprintf(&b, "\nEnter to continue, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewConfirm() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReady to write configuration\n\n")
	fmt.Fprintf(&b, "Report: %s\n", m.cfg.Report)
	fmt.Fprintf(&b, "Sources: %s\n", m.cfg.SourceDir)
	fmt.Fprintf(&b, "Thresholds: red <= %.0f%%, yellow <= %.0f%%, green above\n", m.cfg.Thresholds.Low, m.cfg.Thresholds.Caution)
	fmt.Fprintf(&b, "Filename column: %d\n", m.cfg.Width)
	if len(m.cfg.Exclude) > 0 {
		fmt.Fprintf(&b, "\nConfigured exclusions:\n")
		for _, pattern := range m.cfg.Exclude {
			fmt.Fprintf(&b, "  - %s\n", pattern)
		}
	} else {
		fmt.Fprintf(&b, "\nNo exclusions configured.\n")
	}
	fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) toConfig() application.Config {
	cfg := m.cfg
	cfg.Exclude = append([]string(nil), m.cfg.Exclude...)
	return cfg
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
