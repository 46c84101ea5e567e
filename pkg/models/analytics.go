package models

// ProjectAnalytics is the derived per-project roll-up.
type ProjectAnalytics struct {
	Project             *Project           `json:"project"`
	TotalLoggedHours    float64            `json:"totalLoggedHours"`
	TotalEstimatedHours float64            `json:"totalEstimatedHours"`
	RemainingHours      float64            `json:"remainingHours"`
	ProgressPercentage  float64            `json:"progressPercentage"`
	HoursByWorkType     map[string]float64 `json:"hoursByWorkType"`
	HoursByUser         map[string]float64 `json:"hoursByUser"`
	RecentLogs          []*TimeLog         `json:"recentLogs"`
	TimeLogsCount       int                `json:"timeLogsCount"`
}

// DashboardAnalytics is the fleet-level roll-up across active projects.
type DashboardAnalytics struct {
	ProjectsByStatus map[string]int `json:"projectsByStatus"`
	TotalRevenue     float64        `json:"totalRevenue"`
	TotalCosts       float64        `json:"totalCosts"`
	TotalProfit      float64        `json:"totalProfit"`
	TotalLoggedHours float64        `json:"totalLoggedHours"`
	RecentProjects   []*Project     `json:"recentProjects"`
	RecentLogs       []*TimeLog     `json:"recentLogs"`
}

// Progress computes the completion percentage for logged vs estimated hours,
// clamped to [0, 100]. A zero estimate yields zero progress.
func Progress(logged, estimated float64) float64 {
	if estimated <= 0 {
		return 0
	}
	p := 100 * logged / estimated
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Remaining computes the hours left against the estimate, floored at zero.
func Remaining(logged, estimated float64) float64 {
	r := estimated - logged
	if r < 0 {
		return 0
	}
	return r
}
