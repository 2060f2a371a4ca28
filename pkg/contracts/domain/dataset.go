package domain

import "time"

// DatasetState describes where the in-memory dataset is in its lifecycle.
type DatasetState string

const (
	DatasetStateEmpty   DatasetState = "empty"
	DatasetStateLoading DatasetState = "loading"
	DatasetStateLoaded  DatasetState = "loaded"
	DatasetStateFailed  DatasetState = "failed"
)

// DatasetInfo summarizes a loaded row sequence.
type DatasetInfo struct {
	Rows   int      `json:"rows"`
	Years  []string `json:"years"`
	Groups []string `json:"groups"`
}

// DatasetStatus is the externally visible state of the dashboard dataset.
type DatasetStatus struct {
	State     DatasetState `json:"state"`
	Source    string       `json:"source"`
	LoadedAt  *time.Time   `json:"loaded_at,omitempty"`
	Duration  string       `json:"load_duration,omitempty"`
	LastError string       `json:"last_error,omitempty"`
	DatasetInfo
}

// DisparityView is the disparity table together with the baseline it was computed from.
type DisparityView struct {
	Year            string           `json:"year"`
	Baseline        float64          `json:"baseline"`
	BaselinePresent bool             `json:"baseline_present"`
	Entries         []DisparityEntry `json:"entries"`
}

// RankingView is the ranking of every group for a single year.
type RankingView struct {
	Year    string        `json:"year"`
	Entries []RankedGroup `json:"entries"`
}

// TrendView is the trend table with the year and group axes that produced it.
type TrendView struct {
	Years  []string     `json:"years"`
	Groups []string     `json:"groups"`
	Points []TrendPoint `json:"points"`
}
