package telegram

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the slice of the bot API the poller consumes.
type UpdateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Poller fetches chat updates on a fixed tick and dispatches them into the
// handler. Overlapping ticks are dropped, not queued: a skipped tick loses
// nothing because the next one re-reads from the same cursor.
type Poller struct {
	source   UpdateSource
	handler  *Handler
	interval time.Duration

	busy   atomic.Bool
	offset int
	stop   chan struct{}
	done   chan struct{}
}

func NewPoller(source UpdateSource, handler *Handler, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		handler:  handler,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until Stop, firing a tick every interval.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			go p.tick(ctx)
		}
	}
}

func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

// tick is single-flight: at most one poll body runs at a time.
func (p *Poller) tick(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	defer p.busy.Store(false)
	p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(p.offset)
	updates, err := p.source.GetUpdates(cfg)
	if err != nil {
		log.Printf("telegram getUpdates: %v", err)
		return
	}
	for _, u := range updates {
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
		p.handler.HandleUpdate(ctx, u)
	}
}
