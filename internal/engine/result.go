// Package engine orchestrates the takeover-scanning pipeline.
package engine

import (
	"context"
	"errors"
	"time"
)

// ErrToolNotFound indicates the enumeration tool binary could not be
// located. It is the one enumeration failure that aborts the whole run,
// since no further discovery is possible without the tool.
var ErrToolNotFound = errors.New("enumeration tool not found")

// OutcomeClass is the final classification of a probed candidate.
// Exactly one class is assigned per candidate.
type OutcomeClass int

const (
	// Confirmed404 means the candidate answered HTTP 404, the takeover signal.
	Confirmed404 OutcomeClass = iota
	// Benign means the candidate answered with any non-404 status.
	Benign
	// Abandoned means the candidate produced no definitive answer on any
	// protocol (timeout, redirect loop, or connection failures on both).
	Abandoned
)

func (c OutcomeClass) String() string {
	switch c {
	case Confirmed404:
		return "confirmed-404"
	case Benign:
		return "benign"
	case Abandoned:
		return "abandoned"
	}
	return "unknown"
}

// Outcome is the result of probing a single candidate hostname.
type Outcome struct {
	Host       string
	Class      OutcomeClass
	URL        string // full URL for Confirmed404 and Benign
	Scheme     string // scheme that produced the terminal answer
	StatusCode int    // set for Confirmed404 and Benign
	Reason     string // set for Abandoned
}

// Detection records one confirmed-404 candidate and what happened
// downstream of it. At most one capture and one alert occur per detection.
type Detection struct {
	Host          string
	URL           string
	Captured      bool
	Alerted       bool
	FailureReason string // capture or alert failure, if any
}

// ScanResult is the top-level output of a scan run.
type ScanResult struct {
	Domains      []string
	StartedAt    time.Time
	CompletedAt  time.Time
	DurationSecs float64
	Detections   []Detection
	Summary      Summary
}

// Summary provides aggregate counts for the run.
type Summary struct {
	DomainsScanned   int
	CandidatesProbed int
	MalformedSkipped int
	Confirmed404     int
	Benign           int
	Abandoned        int
	Captured         int
	AlertsSent       int
	AlertsFailed     int
}

// Enumerator discovers candidate subdomains for a root domain.
// An error wrapping ErrToolNotFound is fatal; any other error is
// recoverable and yields zero candidates for that domain.
type Enumerator interface {
	Enumerate(ctx context.Context, domain string) ([]string, error)
}

// Prober checks one candidate over HTTPS then HTTP and classifies it.
// Safe for concurrent use; the implementation bounds its own concurrency.
type Prober interface {
	Probe(ctx context.Context, host string) Outcome
}

// Capturer renders a URL in a browser and returns a screenshot raster.
type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

// Notifier delivers a takeover alert with the captured screenshot.
type Notifier interface {
	Notify(ctx context.Context, url string, screenshot []byte) error
}

// Stages holds the injectable stage implementations. A nil Notifier
// disables alerting; all other stages are required.
type Stages struct {
	Enumerator Enumerator
	Prober     Prober
	Capturer   Capturer
	Notifier   Notifier
}

// ProgressReporter is called by the engine to report run progress.
type ProgressReporter interface {
	Stage(num, total int, msg string)
	Detail(msg string)
	Warn(msg string)
	Found(msg string)
}
