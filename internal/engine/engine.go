package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Config holds the runtime configuration for a scan run.
type Config struct {
	Domains            []string
	ProbeConcurrency   int
	CaptureConcurrency int
	HTTPTimeout        time.Duration
	BrowserTimeout     time.Duration
	UserAgent          string
}

// Run executes the full scanning pipeline: sequential enumeration per root
// domain, one concurrent probe task per valid candidate, and a synchronous
// capture-then-alert chain inside each task that confirms a 404. Run returns
// only after every scheduled task has completed. No task's failure affects
// its siblings; the only errors Run itself returns are fatal ones raised
// before or during task scheduling.
func Run(ctx context.Context, cfg Config, stages Stages, progress ProgressReporter) (*ScanResult, error) {
	if len(cfg.Domains) == 0 {
		return nil, fmt.Errorf("no root domains to scan")
	}

	result := &ScanResult{
		Domains:   cfg.Domains,
		StartedAt: time.Now(),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	var fatal error
	for i, domain := range cfg.Domains {
		progress.Stage(i+1, len(cfg.Domains), fmt.Sprintf("Enumerating subdomains for %s...", domain))

		hosts, err := stages.Enumerator.Enumerate(ctx, domain)
		if err != nil {
			if errors.Is(err, ErrToolNotFound) {
				fatal = err
				break
			}
			progress.Warn(fmt.Sprintf("enumeration failed for %s: %s", domain, err))
			continue
		}
		result.Summary.DomainsScanned++
		progress.Detail(fmt.Sprintf("%s: %d candidates discovered", domain, len(hosts)))

		for _, host := range hosts {
			if !ValidCandidate(host) {
				mu.Lock()
				result.Summary.MalformedSkipped++
				mu.Unlock()
				progress.Detail(fmt.Sprintf("skipping malformed candidate %q", host))
				continue
			}

			mu.Lock()
			result.Summary.CandidatesProbed++
			mu.Unlock()

			wg.Add(1)
			go func(host string) {
				defer wg.Done()
				runCandidate(ctx, host, stages, progress, result, &mu)
			}(host)
		}
	}

	// Every scheduled task runs to completion, even when a fatal
	// enumeration error aborts the remainder of the run.
	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}

	result.CompletedAt = time.Now()
	result.DurationSecs = result.CompletedAt.Sub(result.StartedAt).Seconds()
	return result, nil
}

// runCandidate drives the probe -> capture -> alert chain for one candidate.
func runCandidate(ctx context.Context, host string, stages Stages, progress ProgressReporter, result *ScanResult, mu *sync.Mutex) {
	outcome := stages.Prober.Probe(ctx, host)

	switch outcome.Class {
	case Benign:
		mu.Lock()
		result.Summary.Benign++
		mu.Unlock()
		progress.Detail(fmt.Sprintf("%s: status %d", outcome.URL, outcome.StatusCode))
		return
	case Abandoned:
		mu.Lock()
		result.Summary.Abandoned++
		mu.Unlock()
		progress.Detail(fmt.Sprintf("%s: abandoned (%s)", host, outcome.Reason))
		return
	}

	// Confirmed404 from here on.
	mu.Lock()
	result.Summary.Confirmed404++
	mu.Unlock()
	progress.Found(fmt.Sprintf("Potential takeover: %s responded with 404", outcome.URL))

	det := Detection{Host: host, URL: outcome.URL}

	shot, err := stages.Capturer.Capture(ctx, outcome.URL)
	if err != nil {
		// Most often a transient blip; no retry, no alert.
		det.FailureReason = fmt.Sprintf("capture: %s", err)
		progress.Warn(fmt.Sprintf("screenshot failed for %s: %s", outcome.URL, err))
		appendDetection(result, mu, det)
		return
	}
	det.Captured = true
	mu.Lock()
	result.Summary.Captured++
	mu.Unlock()

	if stages.Notifier == nil {
		appendDetection(result, mu, det)
		return
	}

	if err := stages.Notifier.Notify(ctx, outcome.URL, shot); err != nil {
		det.FailureReason = fmt.Sprintf("alert: %s", err)
		mu.Lock()
		result.Summary.AlertsFailed++
		mu.Unlock()
		progress.Warn(fmt.Sprintf("alert delivery failed for %s: %s", outcome.URL, err))
	} else {
		det.Alerted = true
		mu.Lock()
		result.Summary.AlertsSent++
		mu.Unlock()
		progress.Detail(fmt.Sprintf("alert sent for %s", outcome.URL))
	}
	appendDetection(result, mu, det)
}

func appendDetection(result *ScanResult, mu *sync.Mutex, det Detection) {
	mu.Lock()
	result.Detections = append(result.Detections, det)
	mu.Unlock()
}
