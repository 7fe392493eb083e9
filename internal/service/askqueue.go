package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomscribe/roomscribe/internal/biz/repo"
)

// ErrNotReady is returned by Enqueue when no assistant session is
// available to answer questions.
var ErrNotReady = errors.New("assistant session not ready")

// FailureReply is handed to the requester when an exchange errors out
// or times out, so the room always gets an answer for every accepted
// question.
const FailureReply = "Sorry, I'm having trouble right now"

// Pending is the handle for one queued question. Done yields exactly
// one answer, which may be FailureReply.
type Pending struct {
	ID        string
	Question  string
	Requester string

	done chan string
}

// Done returns the channel carrying the answer.
func (p *Pending) Done() <-chan string {
	return p.done
}

func (p *Pending) resolve(answer string) {
	p.done <- answer
}

// AskQueue serializes questions to the assistant. A single worker
// drains the queue in FIFO order, one exchange at a time, so the
// assistant session never sees interleaved conversations.
type AskQueue struct {
	assistant repo.Assistant
	timeout   time.Duration

	mu    sync.Mutex
	queue []*Pending
	busy  bool
	wake  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAskQueue creates a queue over the given assistant session.
func NewAskQueue(assistant repo.Assistant, timeout time.Duration) *AskQueue {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &AskQueue{
		assistant: assistant,
		timeout:   timeout,
		wake:      make(chan struct{}, 1),
	}
}

// Start launches the worker.
func (q *AskQueue) Start(ctx context.Context) {
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.wg.Add(1)
	go q.run()
	fmt.Println("[AskQueue] Worker started")
}

// Stop shuts the worker down and resolves anything still queued with
// the failure reply, so no requester goroutine is left waiting.
func (q *AskQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()

	q.mu.Lock()
	remaining := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, p := range remaining {
		p.resolve(FailureReply)
	}
	fmt.Println("[AskQueue] Worker stopped")
}

// Enqueue accepts a question and returns its handle together with the
// number of questions ahead of it. Position 0 means the question is
// next in line.
func (q *AskQueue) Enqueue(question, requester string) (*Pending, int, error) {
	if q.assistant == nil || !q.assistant.Ready() {
		return nil, 0, ErrNotReady
	}

	p := &Pending{
		ID:        uuid.New().String(),
		Question:  question,
		Requester: requester,
		done:      make(chan string, 1),
	}

	q.mu.Lock()
	pos := len(q.queue)
	if q.busy {
		pos++
	}
	q.queue = append(q.queue, p)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	fmt.Printf("[AskQueue] Queued question from %s at position %d\n", requester, pos)
	return p, pos, nil
}

// Len returns the number of unanswered questions.
func (q *AskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *AskQueue) run() {
	defer q.wg.Done()

	for {
		p := q.pop()
		if p == nil {
			select {
			case <-q.ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		q.process(p)
	}
}

// pop removes the head and flags the worker busy, so Enqueue counts
// the in-flight exchange when reporting positions.
func (q *AskQueue) pop() *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		q.busy = false
		return nil
	}
	p := q.queue[0]
	q.queue = q.queue[1:]
	q.busy = true
	return p
}

func (q *AskQueue) process(p *Pending) {
	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	answer, err := q.assistant.Ask(ctx, p.Question)
	if err != nil {
		fmt.Printf("[AskQueue] Exchange failed for %s: %v\n", p.Requester, err)
		p.resolve(FailureReply)
		return
	}
	if answer == "" {
		fmt.Printf("[AskQueue] Empty answer for %s\n", p.Requester)
		p.resolve(FailureReply)
		return
	}
	p.resolve(answer)
}
