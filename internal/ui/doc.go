// Package ui provides helpers for formatting human-readable console output.
//
// It renders authorship listings as tables, highlights warnings for the
// operator, and translates shell command events into concise messages while
// detailed telemetry continues to flow through structured loggers.
package ui
