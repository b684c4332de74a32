package models

// Summary contains the display figures resolved for the signed-in entity
type Summary struct {
	EntityID      string   `json:"entity_id"`
	State         string   `json:"state"`
	Region        string   `json:"region"`
	Balance       *float64 `json:"balance,omitempty"`
	WeeklyIncome  *float64 `json:"weekly_income,omitempty"`
	TotalSpend    float64  `json:"total_spend"`
	WeekCount     int      `json:"week_count"`
	ScaleFactor   float64  `json:"scale_factor"`
	ReferenceUsed bool     `json:"reference_used"`
}

// ChartData represents one Plotly series
type ChartData struct {
	Type string      `json:"type"` // bar, line, scatter
	X    interface{} `json:"x"`
	Y    interface{} `json:"y"`
	Name string      `json:"name"`
	Mode string      `json:"mode,omitempty"` // for scatter: lines, markers, lines+markers
	Line interface{} `json:"line,omitempty"`
}

// ChartResponse wraps chart data with layout options
type ChartResponse struct {
	Data   []ChartData `json:"data"`
	Layout ChartLayout `json:"layout,omitempty"`
}

// ChartLayout defines Plotly layout options
type ChartLayout struct {
	Title      string `json:"title,omitempty"`
	XAxisTitle string `json:"xaxis_title,omitempty"`
	YAxisTitle string `json:"yaxis_title,omitempty"`
	BarMode    string `json:"barmode,omitempty"` // group, stack
	ShowLegend bool   `json:"showlegend,omitempty"`
}

// SpendingData is the full dashboard payload: the week axis, the named
// series aligned to it, and the resolved display figures. Degraded is set
// when the reference table could not be fetched and its lines are omitted.
type SpendingData struct {
	Weeks    []string      `json:"weeks"`
	Chart    ChartResponse `json:"chart"`
	Summary  Summary       `json:"summary"`
	Degraded bool          `json:"degraded,omitempty"`
}
