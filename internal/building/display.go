package building

// Display describes how a device type is presented in charts and tables.
type Display struct {
	Label string `json:"label"`
	Unit  string `json:"unit"`
	Color string `json:"color"`
	// AxisMin and AxisMax bound the chart's value axis.
	AxisMin float64 `json:"axis_min"`
	AxisMax float64 `json:"axis_max"`
}

var displayTable = map[DeviceType]Display{
	DeviceTypeTemperatureSensor:   {Label: "Temperature", Unit: "°C", Color: "#ff6384", AxisMin: 15, AxisMax: 30},
	DeviceTypePressureSensor:      {Label: "Pressure", Unit: "Pa", Color: "#36a2eb", AxisMin: 0, AxisMax: 1000},
	DeviceTypeValveController:     {Label: "Valve", Unit: "%", Color: "#4bc0c0", AxisMin: 0, AxisMax: 100},
	DeviceTypeDamperController:    {Label: "Damper", Unit: "%", Color: "#ffce56", AxisMin: 0, AxisMax: 100},
	DeviceTypeFrequencyController: {Label: "Frequency", Unit: "Hz", Color: "#9966ff", AxisMin: 0, AxisMax: 60},
	DeviceTypePowerMeter:          {Label: "Power", Unit: "kW", Color: "#ff9f40", AxisMin: 0, AxisMax: 1000},
}

// DisplayInfo returns presentation metadata for a device type. Types without
// an entry get their raw name as label, a neutral grey and a 0-100 axis.
func DisplayInfo(t DeviceType) Display {
	if d, ok := displayTable[t]; ok {
		return d
	}
	return Display{Label: string(t), Unit: "value", Color: "#666666", AxisMin: 0, AxisMax: 100}
}
