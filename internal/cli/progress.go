package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/catup/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type (
	batchStartMsg struct{ batch, size int }
	fetchStartMsg struct{ id string }
	fetchDoneMsg  struct {
		id  string
		err error
	}
	tickMsg time.Time
)

// progressModel is the bubbletea model of the fetch progress view.
type progressModel struct {
	batch     int
	queued    int
	fetched   int
	failed    []string
	inFlight  map[string]time.Time
	frame     int
	startedAt time.Time
}

func newProgressModel() progressModel {
	return progressModel{inFlight: map[string]time.Time{}, startedAt: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case batchStartMsg:
		m.batch = msg.batch
		m.queued += msg.size
	case fetchStartMsg:
		m.inFlight[msg.id] = time.Now()
	case fetchDoneMsg:
		delete(m.inFlight, msg.id)
		if msg.err != nil {
			m.failed = append(m.failed, msg.id)
		} else {
			m.fetched++
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	done := m.fetched + len(m.failed)
	fmt.Fprintf(&b, "%s %s %s/%d",
		styleIconSpinner.Render(frame),
		StyleTitle.Render("Fetching"),
		StyleNumber.Render(fmt.Sprint(done)), m.queued)
	if m.batch > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · batch %d", m.batch)))
	}
	if len(m.failed) > 0 {
		b.WriteString(" " + StyleWarning.Render(fmt.Sprintf("%d failed", len(m.failed))))
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf(" · %s", time.Since(m.startedAt).Round(time.Second))))
	b.WriteString("\n")

	ids := make([]string, 0, len(m.inFlight))
	for id := range m.inFlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	const shown = 5
	for i, id := range ids {
		if i == shown {
			b.WriteString(StyleDim.Render(fmt.Sprintf("  … %d more\n", len(ids)-shown)))
			break
		}
		b.WriteString("  " + StyleDim.Render(iconInfo) + " " + id + "\n")
	}
	return b.String()
}

// progressView renders fetch progress on a terminal. It implements
// observability.FetchHooks so it can be passed to the reconciler.
type progressView struct {
	program *tea.Program
	done    chan struct{}
}

// startProgress starts the progress view writing to w.
func startProgress(ctx context.Context, w io.Writer) *progressView {
	p := tea.NewProgram(newProgressModel(),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	v := &progressView{program: p, done: make(chan struct{})}
	go func() {
		defer close(v.done)
		_, _ = p.Run()
	}()
	return v
}

// Stop quits the view and waits until the terminal is restored.
func (v *progressView) Stop() {
	if v == nil {
		return
	}
	v.program.Quit()
	<-v.done
}

func (v *progressView) OnBatchStart(_ context.Context, batch, size int) {
	v.program.Send(batchStartMsg{batch: batch, size: size})
}

func (v *progressView) OnFetchStart(_ context.Context, id string) {
	v.program.Send(fetchStartMsg{id: id})
}

func (v *progressView) OnFetchComplete(_ context.Context, id string, _ time.Duration, err error) {
	v.program.Send(fetchDoneMsg{id: id, err: err})
}

var _ observability.FetchHooks = (*progressView)(nil)
