package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/simdash/internal/building"
	"github.com/nerrad567/simdash/internal/telemetry"
)

type fakeSource struct {
	simID  string
	status telemetry.Status
	series []telemetry.Series
}

func (f fakeSource) SimulationID() string { return f.simID }

func (f fakeSource) Status() telemetry.Status { return f.status }

func (f fakeSource) Snapshot() []telemetry.Series { return f.series }

func points(values ...float64) []telemetry.Point {
	now := time.Now()
	out := make([]telemetry.Point, len(values))
	for i, v := range values {
		out[i] = telemetry.Point{Timestamp: now.Add(time.Duration(i) * time.Second), Value: v}
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	v := New(Options{})
	assert.Equal(t, DefaultInterval, v.opts.Interval)
	assert.Equal(t, DefaultChartWidth, v.opts.ChartWidth)
	assert.Equal(t, DefaultChartHeight, v.opts.ChartHeight)
	assert.Equal(t, DefaultMaxCharts, v.opts.MaxCharts)
}

func TestRender_Waiting(t *testing.T) {
	src := fakeSource{
		simID:  "sim-1",
		status: telemetry.Status{SimulationID: "sim-1", State: telemetry.StateConnecting},
	}

	out := New(Options{}).Render(src)
	assert.Contains(t, out, "sim-1")
	assert.Contains(t, out, "connecting")
	assert.Contains(t, out, "Waiting for telemetry")
}

func TestRender_TableAndCharts(t *testing.T) {
	src := fakeSource{
		simID:  "sim-1",
		status: telemetry.Status{SimulationID: "sim-1", State: telemetry.StateOpen},
		series: []telemetry.Series{
			{
				DeviceID: "d1",
				Type:     building.DeviceTypeTemperatureSensor,
				Points:   points(20, 21, 22.5),
				Stats:    telemetry.Stats{Last: 22.5, Min: 20, Max: 22.5, Avg: 21.17, Count: 3},
			},
			{
				DeviceID: "d2",
				Type:     building.DeviceTypePowerMeter,
				Points:   points(5),
				Stats:    telemetry.Stats{Last: 5, Min: 5, Max: 5, Avg: 5, Count: 1},
			},
			{DeviceID: "d3", Type: building.DeviceTypeValveController},
		},
	}

	out := New(Options{ChartWidth: 40, ChartHeight: 8}).Render(src)

	assert.Contains(t, out, "DEVICE")
	assert.Contains(t, out, "22.50 °C")
	assert.Contains(t, out, "21.17 °C")
	assert.Contains(t, out, "5.00 kW")

	// d1 has a chart; d2 has a single point and d3 no points.
	assert.Contains(t, out, " d1 (°C)")
	assert.NotContains(t, out, " d2 (kW)")
	assert.NotContains(t, out, " d3 (%)")

	lines := strings.Split(out, "\n")
	var d3 string
	for _, l := range lines {
		if strings.HasPrefix(l, "d3") {
			d3 = l
		}
	}
	require.NotEmpty(t, d3, "d3 should have a table row")
	assert.Contains(t, d3, "-")
}

func TestRender_ChartCap(t *testing.T) {
	var series []telemetry.Series
	for _, id := range []string{"a", "b", "c"} {
		series = append(series, telemetry.Series{
			DeviceID: id,
			Type:     building.DeviceTypePressureSensor,
			Points:   points(100, 200),
			Stats:    telemetry.Stats{Last: 200, Min: 100, Max: 200, Avg: 150, Count: 2},
		})
	}
	src := fakeSource{status: telemetry.Status{State: telemetry.StateOpen}, series: series}

	out := New(Options{MaxCharts: 2, ChartWidth: 30, ChartHeight: 5}).Render(src)
	assert.Equal(t, 2, strings.Count(out, "Pressure"))
	assert.Contains(t, out, "1 more devices not charted")
}

func TestRender_ShowsStreamError(t *testing.T) {
	src := fakeSource{
		simID:  "sim-1",
		status: telemetry.Status{SimulationID: "sim-1", State: telemetry.StateError, Error: "dial failed"},
	}

	out := New(Options{}).Render(src)
	assert.Contains(t, out, "dial failed")
	assert.Contains(t, out, "error")
}

func TestRun_ReturnsOnTerminalState(t *testing.T) {
	src := fakeSource{status: telemetry.Status{State: telemetry.StateClosed}}

	done := make(chan error, 1)
	go func() { done <- New(Options{Interval: time.Hour}).Run(context.Background(), src) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run should return once the stream is closed")
	}
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	src := fakeSource{status: telemetry.Status{State: telemetry.StateOpen}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- New(Options{Interval: 10 * time.Millisecond}).Run(ctx, src) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run should return on cancel")
	}
}
