package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/firaterror/makina404/internal/pool"
)

// newTestEngine builds an Engine with a stubbed renderer so tests never
// need a real browser.
func newTestEngine(p *pool.Pool, run func(ctx context.Context, url string) ([]byte, error)) *Engine {
	return &Engine{
		pool:    p,
		timeout: time.Second,
		run:     run,
	}
}

func TestCapture_ReturnsRaster(t *testing.T) {
	e := newTestEngine(pool.New(2), func(ctx context.Context, url string) ([]byte, error) {
		return []byte("png-bytes"), nil
	})

	shot, err := e.Capture(context.Background(), "https://old.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(shot) != "png-bytes" {
		t.Errorf("shot = %q, want %q", shot, "png-bytes")
	}
}

func TestCapture_WrapsNavigationError(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	e := newTestEngine(pool.New(2), func(ctx context.Context, url string) ([]byte, error) {
		return nil, navErr
	})

	_, err := e.Capture(context.Background(), "https://old.example.com")
	if !errors.Is(err, navErr) {
		t.Errorf("err = %v, want wrapped %v", err, navErr)
	}
	if !strings.Contains(err.Error(), "old.example.com") {
		t.Errorf("err should name the URL, got %v", err)
	}
}

func TestCapture_EmptyRasterIsError(t *testing.T) {
	e := newTestEngine(pool.New(2), func(ctx context.Context, url string) ([]byte, error) {
		return nil, nil
	})

	if _, err := e.Capture(context.Background(), "https://old.example.com"); err == nil {
		t.Fatal("expected error for empty capture")
	}
}

func TestCapture_BoundedByPool(t *testing.T) {
	const capacity = 2
	p := pool.New(capacity)

	var inFlight atomic.Int32
	var peak atomic.Int32

	e := newTestEngine(p, func(ctx context.Context, url string) ([]byte, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return []byte("x"), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Capture(context.Background(), "https://old.example.com"); err != nil {
				t.Errorf("capture: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > capacity {
		t.Errorf("peak concurrent captures = %d, want <= %d", got, capacity)
	}
	if got := p.InFlight(); got != 0 {
		t.Errorf("pool in-flight after drain = %d, want 0", got)
	}
}

func TestCapture_CancelledContext(t *testing.T) {
	p := pool.New(1)
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	e := newTestEngine(p, func(ctx context.Context, url string) ([]byte, error) {
		t.Error("renderer should not run when acquisition is cancelled")
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := e.Capture(ctx, "https://old.example.com"); err == nil {
		t.Fatal("expected error when pool acquisition is cancelled")
	}
}
