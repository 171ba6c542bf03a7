// Package poller pulls autonomous messages from ALEX in the background.
// Messages arrive either from the control API or from the local queue file
// and are handed to the UI over a channel; the poller never touches UI state.
package poller

import (
	"context"
	"time"

	log "log/slog"

	"alexterm/internal/api"
	"alexterm/internal/store"
)

const DefaultInterval = 5 * time.Second

// Fetcher is the slice of the API client the poller needs.
type Fetcher interface {
	TerminalMessages(ctx context.Context) []api.Message
}

type Poller struct {
	client   Fetcher
	store    *store.Store
	interval time.Duration

	out  chan api.Message
	done chan struct{}
}

func New(client Fetcher, st *store.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		store:    st,
		interval: interval,
		out:      make(chan api.Message, 16),
		done:     make(chan struct{}),
	}
}

// Messages is the delivery channel, drained by the UI goroutine.
func (p *Poller) Messages() <-chan api.Message { return p.out }

// Done closes once the loop has fully exited, letting shutdown join the
// poller with a bounded wait.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Run polls until ctx is cancelled. An in-flight tick always finishes
// before the loop exits.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick checks the API endpoint first, then the file queue fallback.
// Failures on either source stay invisible: passive polling must not
// interrupt the user.
func (p *Poller) tick(ctx context.Context) {
	for _, msg := range p.client.TerminalMessages(ctx) {
		p.emit(ctx, msg)
	}

	drained := p.store.DrainQueue()
	if len(drained) > 0 {
		log.Debug("drained queue file", "messages", len(drained))
	}
	for _, msg := range drained {
		p.emit(ctx, msg)
	}
}

func (p *Poller) emit(ctx context.Context, msg api.Message) {
	if msg.Content() == "" {
		return
	}
	if msg.Title == "" {
		msg.Title = "ALEX"
	}
	select {
	case p.out <- msg:
	case <-ctx.Done():
	}
}
