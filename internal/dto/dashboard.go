package dto

// HomeResponse powers the landing page.
type HomeResponse struct {
	Joined    []ActivitySummary `json:"joined"`
	Available []ActivitySummary `json:"available"`
}

// DashboardResponse groups the user's activities by role and time.
type DashboardResponse struct {
	Stats         DashboardStats   `json:"stats"`
	Organized     ActivityTimeline `json:"organized"`
	Participating ActivityTimeline `json:"participating"`
}

// ActivityTimeline splits activities into ones still ahead and ones that are over.
type ActivityTimeline struct {
	Upcoming []ActivitySummary `json:"upcoming"`
	Past     []ActivitySummary `json:"past"`
}

// DashboardStats are the headline counters shown above the timelines.
type DashboardStats struct {
	UpcomingOrganized     int `json:"upcomingOrganized"`
	UpcomingParticipating int `json:"upcomingParticipating"`
	Past                  int `json:"past"`
	Total                 int `json:"total"`
}
