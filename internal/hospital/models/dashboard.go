package models

// BloodTypeCount is one row of the dashboard's availability breakdown.
type BloodTypeCount struct {
	BloodType string `json:"blood_type"`
	Count     int    `json:"count"`
}

// DashboardStats aggregates donor supply and request demand for the hospital
// dashboard. BloodTypeStats covers all eight types in ascending order, zero
// counts included; RecentRequests holds the latest requests newest first.
type DashboardStats struct {
	TotalDonors       int              `json:"total_donors"`
	AvailableDonors   int              `json:"available_donors"`
	UnavailableDonors int              `json:"unavailable_donors"`
	BloodTypeStats    []BloodTypeCount `json:"blood_type_stats"`
	ActiveRequests    int              `json:"active_requests"`
	RecentRequests    []*BloodRequest  `json:"recent_requests"`
}
