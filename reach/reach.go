// Package reach tracks whether the remote source is currently considered
// accessible.
//
// The cache only ever samples the latest known value at the moment it
// would go to the network; it never awaits a state change. Reachability
// is therefore modeled as a current-value cell (Signal) fed by an
// external event source, typically a Monitor probing on an interval.
// When reachability cannot be determined, the safe answer is offline:
// a fresh Signal reports unreachable until something sets it.
package reach

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the sampled reachability signal.
type Status interface {
	// Online reports the latest known reachability. It must be cheap and
	// non-blocking; callers invoke it on hot paths.
	Online() bool
}

// Fixed is a Status pinned to a constant value.
type Fixed bool

func (f Fixed) Online() bool { return bool(f) }

// Always reports reachable forever. Useful when connectivity tracking is
// handled elsewhere or not needed.
func Always() Status { return Fixed(true) }

// Never reports unreachable forever.
func Never() Status { return Fixed(false) }

// Signal is a concurrency-safe current-value cell. The zero value
// reports offline.
type Signal struct {
	online atomic.Bool
}

// NewSignal returns a Signal initialized to the given state.
func NewSignal(online bool) *Signal {
	s := &Signal{}
	s.online.Store(online)
	return s
}

func (s *Signal) Online() bool { return s.online.Load() }

// Set records a reachability transition.
func (s *Signal) Set(online bool) { s.online.Store(online) }

// Prober performs one reachability check.
type Prober interface {
	// Probe reports whether the remote looked reachable right now.
	Probe(ctx context.Context) bool
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) bool

func (f ProberFunc) Probe(ctx context.Context) bool { return f(ctx) }

// HTTPProber considers the remote reachable when a HEAD request to URL
// completes with any HTTP response.
type HTTPProber struct {
	URL     string
	Client  *http.Client  // nil => http.DefaultClient
	Timeout time.Duration // 0 => 3s
}

func (p HTTPProber) Probe(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// DialProber considers the remote reachable when a TCP connection to
// Addr succeeds.
type DialProber struct {
	Addr    string
	Timeout time.Duration // 0 => 3s
}

func (p DialProber) Probe(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Monitor drives a Signal from a Prober on a fixed interval. It starts
// offline and flips online only after a successful probe, so a probe
// that can never run leaves the signal in the safe state.
type Monitor struct {
	signal   *Signal
	prober   Prober
	interval time.Duration

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMonitor starts probing immediately (one synchronous probe, then one
// per interval). interval <= 0 defaults to 30s. Stop the monitor with
// Close.
func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m := &Monitor{
		signal:   &Signal{},
		prober:   prober,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	m.signal.Set(prober.Probe(context.Background()))
	m.wg.Add(1)
	go m.loop()
	return m
}

// Status exposes the monitor's signal for sampling.
func (m *Monitor) Status() Status { return m.signal }

func (m *Monitor) Online() bool { return m.signal.Online() }

func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.signal.Set(m.prober.Probe(context.Background()))
		case <-m.stopCh:
			return
		}
	}
}

// Close stops the probe loop. Safe to call multiple times.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
