package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	tm "github.com/buger/goterm"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/telemetry"
)

// Defaults for Options.
const (
	DefaultInterval    = time.Second
	DefaultChartWidth  = 60
	DefaultChartHeight = 10
	DefaultMaxCharts   = 6
)

// Source is a live telemetry session. *telemetry.Monitor satisfies it.
type Source interface {
	SimulationID() string
	Status() telemetry.Status
	Snapshot() []telemetry.Series
}

// Options configures a View.
type Options struct {
	// Interval between redraws. Default: 1s
	Interval time.Duration

	ChartWidth  int
	ChartHeight int

	// MaxCharts caps how many device charts are drawn per frame.
	// Devices beyond it still appear in the table.
	MaxCharts int
}

// View draws a Source to the terminal.
type View struct {
	opts Options
}

// New creates a View, filling unset options with defaults.
func New(opts Options) *View {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = DefaultChartWidth
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = DefaultChartHeight
	}
	if opts.MaxCharts <= 0 {
		opts.MaxCharts = DefaultMaxCharts
	}
	return &View{opts: opts}
}

// Run redraws the screen every interval until ctx is cancelled or the
// session's stream reaches a terminal state. The last frame stays on screen.
func (v *View) Run(ctx context.Context, src Source) error {
	ticker := time.NewTicker(v.opts.Interval)
	defer ticker.Stop()

	for {
		v.draw(src)
		if src.Status().State.IsTerminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (v *View) draw(src Source) {
	tm.Clear()
	tm.MoveCursor(1, 1)
	_, _ = tm.Print(v.Render(src)) //nolint:errcheck // terminal output
	tm.Flush()
}

// Render returns one frame: a status line, the device table and the charts.
func (v *View) Render(src Source) string {
	var b strings.Builder

	status := src.Status()
	fmt.Fprintf(&b, "%s %s  %s\n", tm.Bold("Simulation"), orDash(src.SimulationID()), stateLabel(status))
	if status.Error != "" {
		fmt.Fprintf(&b, "%s\n", tm.Color(status.Error, tm.RED))
	}
	b.WriteString("\n")

	series := src.Snapshot()
	if len(series) == 0 {
		b.WriteString("Waiting for telemetry...\n")
		return b.String()
	}

	b.WriteString(renderTable(series))

	charts := 0
	for _, s := range series {
		if charts == v.opts.MaxCharts {
			fmt.Fprintf(&b, "\n(%d more devices not charted)\n", len(series)-charts)
			break
		}
		chart, ok := v.renderChart(s)
		if !ok {
			continue
		}
		d := building.DisplayInfo(s.Type)
		fmt.Fprintf(&b, "\n%s %s (%s)\n%s", tm.Bold(d.Label), s.DeviceID, d.Unit, chart)
		charts++
	}

	return b.String()
}

func renderTable(series []telemetry.Series) string {
	table := tm.NewTable(0, 8, 2, ' ', 0)
	fmt.Fprintf(table, "DEVICE\tTYPE\tLAST\tMIN\tMAX\tAVG\tSAMPLES\n")
	for _, s := range series {
		if s.Stats.Count == 0 {
			fmt.Fprintf(table, "%s\t%s\t-\t-\t-\t-\t0\n", s.DeviceID, s.Type)
			continue
		}
		unit := building.DisplayInfo(s.Type).Unit
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.DeviceID, s.Type,
			withUnit(s.Stats.Last, unit),
			withUnit(s.Stats.Min, unit),
			withUnit(s.Stats.Max, unit),
			withUnit(s.Stats.Avg, unit),
			s.Stats.Count,
		)
	}
	return table.String()
}

// renderChart draws a device window. Windows with fewer than two points or
// no spread are skipped; goterm cannot scale a flat or single-point series.
func (v *View) renderChart(s telemetry.Series) (string, bool) {
	if len(s.Points) < 2 || s.Stats.Max == s.Stats.Min {
		return "", false
	}

	data := new(tm.DataTable)
	data.AddColumn("sample")
	data.AddColumn(building.DisplayInfo(s.Type).Unit)
	for i, p := range s.Points {
		data.AddRow(float64(i), p.Value)
	}

	chart := tm.NewLineChart(v.opts.ChartWidth, v.opts.ChartHeight)
	return chart.Draw(data), true
}

func stateLabel(st telemetry.Status) string {
	label := string(st.State)
	switch st.State {
	case telemetry.StateOpen:
		return tm.Color(label, tm.GREEN)
	case telemetry.StateConnecting:
		return tm.Color(label, tm.YELLOW)
	case telemetry.StateError:
		return tm.Color(label, tm.RED)
	default:
		return label
	}
}

func withUnit(v float64, unit string) string {
	return fmt.Sprintf("%.2f %s", v, unit)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
