package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jargon/internal/config"
	"jargon/internal/isa"
	"jargon/internal/vm"
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] file.slang|file.jgb",
	Short: "Step through a program instruction-by-instruction in a TUI",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

// debugModel is a bubbletea.Model over a *vm.VM, grounded on
// internal/ui/progress.go's shape (a struct wrapping the thing being
// observed, updated by tea.Msg, rendered by View, with a spinner ticking
// while it's live). Unlike that model this one steps its VM synchronously
// on a keypress rather than listening on a channel of external events.
type debugModel struct {
	machine *vm.VM
	code    []isa.Instr
	heapBar progress.Model
	spin    spinner.Model
	quit    bool
	err     error
}

func runDebug(cmd *cobra.Command, args []string) error {
	path := args[0]
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	prog, err := loadProgram(path, maxDiagnostics, false, cmd)
	if err != nil {
		return err
	}
	cfg := config.Default()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &debugModel{
		machine: vm.New(prog.Code, cfg.VM.StackMax, cfg.VM.HeapMax),
		code:    prog.Code,
		heapBar: progress.New(progress.WithDefaultGradient()),
		spin:    sp,
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func (m *debugModel) Init() tea.Cmd { return m.spin.Tick }

func (m *debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "n", " ":
			m.step()
		case "r":
			for m.machine.Status() == vm.Running && m.err == nil {
				m.step()
			}
		}
		return m, nil
	case spinner.TickMsg:
		if m.machine.Status() != vm.Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *debugModel) step() {
	if m.machine.Status() != vm.Running {
		return
	}
	if err := m.machine.Step(); err != nil {
		m.err = err
	}
}

func (m *debugModel) View() string {
	if m.quit {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	regStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	status := m.machine.Status().String()
	header := fmt.Sprintf("%s jargon debug (%s)", m.spin.View(), status)
	if m.machine.Status() != vm.Running {
		header = fmt.Sprintf("done: jargon debug (%s)", status)
	}

	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(header))
	fmt.Fprintln(&b)

	regs := fmt.Sprintf("cp=%d sp=%d fp=%d hp=%d/%d",
		m.machine.CP(), m.machine.SP(), m.machine.FP(), m.machine.HP(), m.machine.HeapCap())
	fmt.Fprintln(&b, regStyle.Render(regs))

	heapPct := 0.0
	if cap := m.machine.HeapCap(); cap > 0 {
		heapPct = float64(m.machine.HP()) / float64(cap)
	}
	fmt.Fprintln(&b, m.heapBar.ViewAs(heapPct))
	fmt.Fprintln(&b)

	if m.err != nil {
		fmt.Fprintf(&b, "fault: %s\n", m.err)
	} else if m.machine.Status() == vm.Running && m.machine.CP() < len(m.code) {
		fmt.Fprintf(&b, "next:  %d  %s\n", m.machine.CP(), m.code[m.machine.CP()])
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "stack (top first):")
	for i := m.machine.SP() - 1; i >= 0 && i >= m.machine.SP()-12; i-- {
		fmt.Fprintf(&b, "  [%d] %s\n", i, m.machine.Peek(i))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "n/space: step   r: run to completion   q: quit")
	return b.String()
}
