package recon

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/firaterror/makina404/internal/engine"
	"github.com/firaterror/makina404/internal/pool"
)

const (
	probeMaxRedirects = 10
	probeMaxDrain     = 4 * 1024 // drain a little body so connections get reused
)

var errTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient builds the shared probe client. TLS verification is
// disabled: takeover candidates are frequently misconfigured and a
// certificate error must not mask a 404 signal. Redirects are followed up
// to probeMaxRedirects.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= probeMaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}

// Prober implements engine.Prober: HTTPS first, HTTP second, one bounded
// pool slot held per protocol attempt.
type Prober struct {
	Client    *http.Client
	Pool      *pool.Pool
	Timeout   time.Duration
	UserAgent string
}

// attemptClass classifies a single protocol attempt.
type attemptClass int

const (
	attemptStatus404 attemptClass = iota
	attemptStatusOther
	attemptTimeout
	attemptRedirectLoop
	attemptNetworkError
	attemptUnexpected
)

// fallthroughPolicy is the per-attempt continuation table: true means the
// prober moves on to the next protocol, false means the attempt is
// terminal. Connection-level failures fall through; a host that already
// answered definitively (404 or otherwise) is never probed again, and slow
// or redirect-looping hosts are not retried over the fallback protocol.
// Unrecognized errors also fall through, preserving the original permissive
// policy that favors completeness of detection over strict classification.
var fallthroughPolicy = map[attemptClass]bool{
	attemptStatus404:    false,
	attemptStatusOther:  false,
	attemptTimeout:      false,
	attemptRedirectLoop: false,
	attemptNetworkError: true,
	attemptUnexpected:   true,
}

type attemptResult struct {
	class  attemptClass
	status int
	reason string
}

// Probe checks one candidate, trying HTTPS strictly before HTTP and
// stopping at the first terminal attempt. Exactly one final outcome class
// is produced per candidate.
func (p *Prober) Probe(ctx context.Context, host string) engine.Outcome {
	var lastReason string

	for _, scheme := range []string{"https", "http"} {
		res := p.attempt(ctx, scheme, host)
		if fallthroughPolicy[res.class] {
			lastReason = fmt.Sprintf("%s on %s", res.reason, scheme)
			continue
		}
		return finalize(host, scheme, res)
	}

	return engine.Outcome{
		Host:   host,
		Class:  engine.Abandoned,
		Reason: lastReason,
	}
}

// attempt performs one GET under a probe-pool slot. The slot is released
// when the attempt ends, on every path.
func (p *Prober) attempt(ctx context.Context, scheme, host string) attemptResult {
	if err := p.Pool.Acquire(ctx); err != nil {
		return attemptResult{class: attemptTimeout, reason: fmt.Sprintf("probe cancelled: %s", err)}
	}
	defer p.Pool.Release()

	reqCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, scheme+"://"+host, nil)
	if err != nil {
		return attemptResult{class: attemptUnexpected, reason: err.Error()}
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return classifyProbeError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, probeMaxDrain))

	if resp.StatusCode == http.StatusNotFound {
		return attemptResult{class: attemptStatus404, status: resp.StatusCode}
	}
	return attemptResult{class: attemptStatusOther, status: resp.StatusCode}
}

func finalize(host, scheme string, res attemptResult) engine.Outcome {
	out := engine.Outcome{
		Host:   host,
		Scheme: scheme,
		URL:    scheme + "://" + host,
	}
	switch res.class {
	case attemptStatus404:
		out.Class = engine.Confirmed404
		out.StatusCode = res.status
	case attemptStatusOther:
		out.Class = engine.Benign
		out.StatusCode = res.status
	case attemptTimeout:
		out.Class = engine.Abandoned
		out.URL = ""
		out.Reason = fmt.Sprintf("timeout on %s", scheme)
		if res.reason != "" {
			out.Reason = res.reason
		}
	case attemptRedirectLoop:
		out.Class = engine.Abandoned
		out.URL = ""
		out.Reason = fmt.Sprintf("too many redirects on %s", scheme)
	}
	return out
}

// classifyProbeError maps a transport error onto the attempt decision
// table. Timeouts are checked before connection errors because a timeout
// also satisfies net.Error.
func classifyProbeError(err error) attemptResult {
	if errors.Is(err, errTooManyRedirects) {
		return attemptResult{class: attemptRedirectLoop, reason: "too many redirects"}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return attemptResult{class: attemptTimeout}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return attemptResult{class: attemptTimeout}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return attemptResult{class: attemptNetworkError, reason: "dns failure"}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return attemptResult{class: attemptNetworkError, reason: "connection failed"}
	}

	return attemptResult{class: attemptUnexpected, reason: err.Error()}
}
