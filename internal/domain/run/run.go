package run

import "time"

// Position is a single GPS sample of a run trace.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HeartRateZones holds the share of the run (percent) spent in each zone.
type HeartRateZones struct {
	Zone1 int `json:"zone1"`
	Zone2 int `json:"zone2"`
	Zone3 int `json:"zone3"`
	Zone4 int `json:"zone4"`
	Zone5 int `json:"zone5"`
}

// Run is a saved running session with its derived metrics.
type Run struct {
	ID           int64           `json:"id,string"`
	UserID       int64           `json:"-"`
	Date         time.Time       `json:"date"`
	Territory    string          `json:"territory"`
	Distance     float64         `json:"distance"`
	Time         int             `json:"time"`
	AvgSpeed     float64         `json:"avgSpeed"`
	AvgPace      float64         `json:"avgPace"`
	MaxSpeed     float64         `json:"maxSpeed"`
	Calories     *int            `json:"calories"`
	AvgHeartRate *int            `json:"avgHeartRate"`
	HRZones      *HeartRateZones `json:"heartRateZones"`
	Positions    []Position      `json:"positions"`
}

// CreateRunRequest is the save-run payload. Metric fields are optional, the
// client computes them; we only reject values that make no physical sense.
type CreateRunRequest struct {
	Territory    string          `json:"territory"`
	Distance     float64         `json:"distance" binding:"gte=0"`
	Time         int             `json:"time" binding:"gte=0"`
	AvgSpeed     *float64        `json:"avgSpeed" binding:"omitempty,gte=0"`
	AvgPace      *float64        `json:"avgPace" binding:"omitempty,gte=0"`
	MaxSpeed     *float64        `json:"maxSpeed" binding:"omitempty,gte=0"`
	Calories     *int            `json:"calories" binding:"omitempty,gte=0"`
	AvgHeartRate *int            `json:"avgHeartRate" binding:"omitempty,gte=0,lte=260"`
	HRZones      *HeartRateZones `json:"heartRateZones"`
	Positions    []Position      `json:"positions"`
}

// LeaderboardEntry is one row of the total-distance ranking.
type LeaderboardEntry struct {
	UserID        int64   `json:"userId"`
	Name          string  `json:"name"`
	TotalDistance float64 `json:"totalDistance"`
	RunCount      int     `json:"runCount"`
}
