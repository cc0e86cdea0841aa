package server

import (
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/runlog"
)

// StatusResponse is the payload for the root status endpoint.
type StatusResponse struct {
	Message string `json:"message"`
}

// CronResponse acknowledges the external cron ping.
type CronResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports process health for the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime_seconds"`
}

// RunsResponse lists recent pipeline runs.
type RunsResponse struct {
	Runs []runlog.Record `json:"runs"`
}
