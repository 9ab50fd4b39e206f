package models

import "time"

// WindowRecord is the focus time accumulated for one window title
type WindowRecord struct {
	Title   string  `json:"title" yaml:"title"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// StatusReport is a point-in-time snapshot rendered by the reporter
type StatusReport struct {
	GeneratedAt  time.Time      `json:"generated_at" yaml:"generated_at"`
	Probe        string         `json:"probe,omitempty" yaml:"probe,omitempty"`
	WindowCount  int            `json:"window_count" yaml:"window_count"`
	Windows      []WindowRecord `json:"windows" yaml:"windows"`
	TotalSeconds float64        `json:"total_seconds" yaml:"total_seconds"`
	Unavailable  string         `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}
