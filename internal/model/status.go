package model

import "strings"

// Status is the lifecycle state recorded in the source object's status tag.
// StatusUnknown is a read-side answer meaning "no status recorded"; it is never
// written as a tag value.
type Status string

const (
	StatusNew       Status = "New"
	StatusSubmitted Status = "Submitted"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusUnknown   Status = "Unknown"
)

// Terminal reports whether the status is a final recognition outcome.
// Once terminal, no lifecycle operation may move the document back to
// New or Submitted.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ParseStatus maps a stored tag value back to a Status. Values written by this
// system round-trip exactly; anything else (including an empty value) reads as
// StatusUnknown.
func ParseStatus(v string) Status {
	switch Status(v) {
	case StatusNew, StatusSubmitted, StatusSucceeded, StatusFailed:
		return Status(v)
	default:
		return StatusUnknown
	}
}

// TerminalStatus is the closed variant over the terminal signal delivered by
// the recognition engine. The engine reports SUCCEEDED or FAILED; any other
// value is preserved verbatim so it can still be recorded and audited, but is
// reported to callers as an unrecognized outcome.
type TerminalStatus struct {
	status Status
	raw    string
}

// ParseTerminalStatus classifies a raw engine status value. Matching is
// case-insensitive so both the engine's upper-case wire form and this system's
// canonical form are accepted.
func ParseTerminalStatus(raw string) TerminalStatus {
	switch strings.ToLower(raw) {
	case "succeeded":
		return TerminalStatus{status: StatusSucceeded, raw: raw}
	case "failed":
		return TerminalStatus{status: StatusFailed, raw: raw}
	default:
		return TerminalStatus{status: StatusUnknown, raw: raw}
	}
}

// Known reports whether the signal carried a recognized terminal value.
func (t TerminalStatus) Known() bool { return t.status != StatusUnknown }

// Succeeded reports whether the signal is a successful completion.
func (t TerminalStatus) Succeeded() bool { return t.status == StatusSucceeded }

// Status returns the canonical lifecycle status for a known signal, or
// StatusUnknown otherwise.
func (t TerminalStatus) Status() Status { return t.status }

// Raw returns the engine's literal status value.
func (t TerminalStatus) Raw() string { return t.raw }

// TagValue returns what gets written to the status tag: the canonical form for
// known outcomes, the literal engine value otherwise.
func (t TerminalStatus) TagValue() string {
	if t.Known() {
		return string(t.status)
	}
	return t.raw
}
