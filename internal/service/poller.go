package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
	"github.com/roomscribe/roomscribe/internal/biz/repo"
	"github.com/roomscribe/roomscribe/internal/biz/usecase"
)

// Poller drives the observation loop: it polls the surface on a fixed
// interval, feeds every event through the ingest pipeline, and
// dispatches acknowledgements and assistant questions. Ticks never
// overlap; a slow poll simply delays the next one.
type Poller struct {
	surface  repo.Surface
	ingest   *usecase.IngestUsecase
	queue    *AskQueue // may be nil when no assistant is configured
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. queue may be nil.
func NewPoller(surface repo.Surface, ingest *usecase.IngestUsecase, queue *AskQueue, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		surface:  surface,
		ingest:   ingest,
		queue:    queue,
		interval: interval,
	}
}

// Start launches the polling loop.
func (p *Poller) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run()
	fmt.Printf("[Poller] Started with interval %v\n", p.interval)
}

// Stop halts the loop and waits for in-flight work to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	fmt.Println("[Poller] Stopped")
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce processes one batch of events. Failures are logged and
// skipped so a single bad event never stalls the loop.
func (p *Poller) pollOnce() {
	events, err := p.surface.Poll(p.ctx)
	if err != nil {
		fmt.Printf("[Poller] Poll failed: %v\n", err)
		return
	}

	for _, ev := range events {
		res, err := p.ingest.ProcessEvent(p.ctx, ev)
		if err != nil {
			fmt.Printf("[Poller] Failed to process event %s: %v\n", ev.ExternalID, err)
			continue
		}
		if res.Status != usecase.IngestAccepted {
			continue
		}

		// Side effects are tied to the first successful store write.
		// A recovery pass over already-stored events re-marks them
		// without acknowledging or asking twice.
		if res.Inserted {
			p.dispatch(ev, res.Intent)
		}
	}
}

func (p *Poller) dispatch(ev domain.Event, intent domain.Intent) {
	switch intent.Kind {
	case domain.IntentOptOut:
		p.reply(fmt.Sprintf("@%s message tracking disabled", ev.Author))
	case domain.IntentOptIn:
		p.reply(fmt.Sprintf("@%s message tracking enabled", ev.Author))
	case domain.IntentAssistantMention:
		if intent.Question == "" {
			return
		}
		p.ask(ev.Author, intent.Question)
	}
}

func (p *Poller) ask(author, question string) {
	if p.queue == nil {
		return
	}

	pending, pos, err := p.queue.Enqueue(question, author)
	if err != nil {
		fmt.Printf("[Poller] Cannot queue question from %s: %v\n", author, err)
		return
	}
	if pos > 0 {
		p.reply(fmt.Sprintf("@%s Question queued (position %d)", author, pos+1))
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		select {
		case answer := <-pending.Done():
			p.reply(fmt.Sprintf("@%s %s", author, answer))
		case <-p.ctx.Done():
		}
	}()
}

func (p *Poller) reply(text string) {
	if err := p.surface.Reply(p.ctx, text); err != nil {
		fmt.Printf("[Poller] Failed to send reply: %v\n", err)
	}
}
