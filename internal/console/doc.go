// Package console renders a live telemetry session in the terminal.
//
// Every tick the screen is redrawn with a table of tracked devices (last,
// min, max and average in the device type's unit) followed by a line chart
// of each device's current window. Rendering is built on goterm; Render is
// pure so the layout can be tested without a terminal.
package console
