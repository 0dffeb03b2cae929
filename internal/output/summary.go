package output

import (
	"fmt"
	"io"

	"github.com/firaterror/makina404/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// WriteHeader prints the startup banner: targets, pool sizes, and whether
// the alert webhook is live.
func WriteHeader(w io.Writer, noColor bool, domains, probeSlots, captureSlots int, webhookConfigured bool) {
	if noColor {
		fmt.Fprintf(w, "makina404 %s\n", Version)
	} else {
		fmt.Fprintf(w, "\033[1mmakina404 %s\033[0m\n", Version)
	}
	fmt.Fprintf(w, "Targets: %d domains\n", domains)
	fmt.Fprintf(w, "Probe concurrency: %d, capture concurrency: %d\n", probeSlots, captureSlots)
	webhook := "no"
	if webhookConfigured {
		webhook = "yes"
	}
	fmt.Fprintf(w, "Webhook configured: %s\n\n", webhook)
}

// WriteSummary prints the post-scan summary.
func WriteSummary(w io.Writer, result *engine.ScanResult, noColor bool) {
	s := result.Summary

	fmt.Fprintln(w)
	if noColor {
		fmt.Fprintf(w, "Domains: %d scanned\n", s.DomainsScanned)
		fmt.Fprintf(w, "Candidates: %d probed, %d malformed skipped\n", s.CandidatesProbed, s.MalformedSkipped)
	} else {
		fmt.Fprintf(w, "\033[1mDomains:\033[0m %d scanned\n", s.DomainsScanned)
		fmt.Fprintf(w, "\033[1mCandidates:\033[0m %d probed, %d malformed skipped\n", s.CandidatesProbed, s.MalformedSkipped)
	}
	fmt.Fprintf(w, "Outcomes: %d confirmed-404, %d benign, %d abandoned\n", s.Confirmed404, s.Benign, s.Abandoned)

	if s.Confirmed404 > 0 {
		fmt.Fprintln(w)
		if noColor {
			fmt.Fprintf(w, "! %d potential subdomain takeovers detected\n", s.Confirmed404)
		} else {
			fmt.Fprintf(w, "\033[33m!\033[0m %d potential subdomain takeovers detected\n", s.Confirmed404)
		}
		fmt.Fprintf(w, "  %d screenshots captured, %d alerts sent, %d alerts failed\n",
			s.Captured, s.AlertsSent, s.AlertsFailed)
	}
}
