// Package connectivity tracks whether the sync server is reachable.
//
// Reachability combines two signals: a cheap check that some non-loopback
// network interface is up, and a validated probe (a health call to the
// server) run periodically. Subscribers receive the current state on
// registration and every transition afterwards; identical consecutive values
// are never re-emitted.
package connectivity

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/logging"
)

// Probe validates real reachability, e.g. by pinging the server.
type Probe func(ctx context.Context) error

type Observer struct {
	logger       logging.Logger
	probe        Probe
	hasInterface func() bool
	interval     time.Duration
	probeTimeout time.Duration

	// emitMu serializes state changes with subscriber delivery so that every
	// subscriber sees transitions in order.
	emitMu sync.Mutex

	mu        sync.Mutex
	validated bool
	online    bool
	subs      map[int]func(bool)
	nextID    int
}

type Option func(*Observer)

func WithInterval(d time.Duration) Option {
	return func(o *Observer) { o.interval = d }
}

func WithProbeTimeout(d time.Duration) Option {
	return func(o *Observer) { o.probeTimeout = d }
}

// WithInterfaceCheck replaces the network interface check.
func WithInterfaceCheck(fn func() bool) Option {
	return func(o *Observer) { o.hasInterface = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Observer) { o.logger = l }
}

func NewObserver(probe Probe, opts ...Option) *Observer {
	o := &Observer{
		logger:       logging.NewNop(),
		probe:        probe,
		hasInterface: HasActiveInterface,
		interval:     3 * time.Second,
		probeTimeout: 3 * time.Second,
		subs:         make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("module", "connectivity")
	return o
}

// IsOnline reports whether an interface is up and the last probe succeeded.
func (o *Observer) IsOnline() bool {
	if !o.hasInterface() {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.validated
}

// Check probes now, records the result and notifies subscribers on change.
func (o *Observer) Check(ctx context.Context) bool {
	online := false
	if o.hasInterface() {
		pctx, cancel := context.WithTimeout(ctx, o.probeTimeout)
		err := o.probe(pctx)
		cancel()
		online = err == nil
		if err != nil {
			o.logger.Debug(ctx, "probe failed", "error", err)
		}
	}

	o.set(ctx, online)
	return online
}

func (o *Observer) set(ctx context.Context, online bool) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	o.validated = online
	changed := o.online != online
	o.online = online
	fns := make([]func(bool), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	if !changed {
		return
	}

	if online {
		o.logger.Info(ctx, "Switched to online mode")
	} else {
		o.logger.Info(ctx, "Switched to offline mode")
	}

	for _, fn := range fns {
		fn(online)
	}
}

// Run checks immediately and then every interval until ctx is done.
func (o *Observer) Run(ctx context.Context) error {
	o.Check(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.Check(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Subscription is returned by Subscribe.
type Subscription interface {
	// Cancel stops delivery. No callback runs after Cancel returns; it must
	// not be called from inside the callback.
	Cancel()
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() { s.once.Do(s.cancel) }

// Subscribe delivers the current state to fn synchronously, then every
// transition. fn must not block for long or call back into the Observer.
func (o *Observer) Subscribe(fn func(online bool)) Subscription {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	current := o.online
	o.mu.Unlock()

	fn(current)

	return &subscription{cancel: func() {
		o.emitMu.Lock()
		defer o.emitMu.Unlock()
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}}
}

// Changes is a channel view of Subscribe. Slow readers only see the latest
// state. The channel is closed when ctx is done.
func (o *Observer) Changes(ctx context.Context) <-chan bool {
	ch := make(chan bool, 1)
	sub := o.Subscribe(func(v bool) {
		select {
		case <-ch:
		default:
		}
		ch <- v
	})

	go func() {
		<-ctx.Done()
		sub.Cancel()
		close(ch)
	}()

	return ch
}

// HasActiveInterface reports whether any non-loopback interface is up and
// has an address assigned.
func HasActiveInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}
