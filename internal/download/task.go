package download

import (
	"context"
	"sync"
	"time"

	"github.com/vslauncher/launcher/internal/domain"
)

// State is the lifecycle state of a download task
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further transitions can happen
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// subscriberBuffer is the capacity of each progress channel
const subscriberBuffer = 16

// Progress is a point-in-time view of a task, delivered to subscribers
type Progress struct {
	TaskID    string `json:"task_id"`
	VersionID string `json:"version_id"`
	State     State  `json:"state"`
	Received  int64  `json:"received"`
	Total     int64  `json:"total"` // -1 while unknown
	Error     string `json:"error,omitempty"`
}

// Fraction returns progress in [0,1], or -1 when the total size is unknown
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		if p.State == StateCompleted {
			return 1
		}
		return -1
	}
	return float64(p.Received) / float64(p.Total)
}

// Snapshot is the serialisable state of a task
// @Description Download task state
type Snapshot struct {
	ID          string     `json:"id"`
	Version     string     `json:"version"`
	Destination string     `json:"destination"`
	State       State      `json:"state" enums:"pending,in_progress,completed,failed,cancelled"`
	Received    int64      `json:"received"`
	Total       int64      `json:"total"`
	Error       *ErrorInfo `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// ErrorInfo is the failure attached to a finished task
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Task is one download-and-install job. All accessors are safe for concurrent use.
type Task struct {
	ID          string
	Version     domain.GameVersion
	Destination string
	CreatedAt   time.Time

	mu          sync.RWMutex
	state       State
	received    int64
	total       int64
	err         error
	finishedAt  time.Time
	subscribers []chan Progress

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(id string, version domain.GameVersion, destination string, parent context.Context) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ID:          id,
		Version:     version,
		Destination: destination,
		CreatedAt:   time.Now(),
		state:       StatePending,
		total:       -1,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// completedTask builds a task that is already finished, for versions that are installed
func completedTask(id string, version domain.GameVersion, destination string) *Task {
	t := newTask(id, version, destination, context.Background())
	t.cancel()
	t.state = StateCompleted
	t.finishedAt = t.CreatedAt
	close(t.done)
	return t
}

// State returns the current lifecycle state
func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Err returns the failure of a Failed or Cancelled task
func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Done is closed once the task reaches a terminal state
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done, and returns the task error
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel requests cooperative cancellation; streaming stops at the next chunk boundary
func (t *Task) Cancel() {
	t.cancel()
}

// Progress returns the current progress
func (t *Task) Progress() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progressLocked()
}

func (t *Task) progressLocked() Progress {
	p := Progress{
		TaskID:    t.ID,
		VersionID: t.Version.ID,
		State:     t.state,
		Received:  t.received,
		Total:     t.total,
	}
	if t.err != nil {
		p.Error = t.err.Error()
	}
	return p
}

// Snapshot returns the serialisable state of the task
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		ID:          t.ID,
		Version:     t.Version.ID,
		Destination: t.Destination,
		State:       t.state,
		Received:    t.received,
		Total:       t.total,
		CreatedAt:   t.CreatedAt,
	}
	if !t.finishedAt.IsZero() {
		finished := t.finishedAt
		s.FinishedAt = &finished
	}
	if t.err != nil {
		info := &ErrorInfo{Code: domain.ErrInternal, Message: t.err.Error()}
		if appErr, ok := domain.AsAppError(t.err); ok {
			info.Code = appErr.Code
			info.Message = appErr.Message
		}
		s.Error = info
	}
	return s
}

// Subscribe returns a channel that receives progress updates and is closed when
// the task finishes. Slow subscribers miss intermediate updates, never the close.
func (t *Task) Subscribe() <-chan Progress {
	ch := make(chan Progress, subscriberBuffer)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		ch <- t.progressLocked()
		close(ch)
		return ch
	}
	t.subscribers = append(t.subscribers, ch)
	return ch
}

func (t *Task) setState(state State) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
	t.publish()
}

func (t *Task) setTotal(total int64) {
	t.mu.Lock()
	t.total = total
	t.mu.Unlock()
}

func (t *Task) addReceived(n int64) {
	t.mu.Lock()
	t.received += n
	t.mu.Unlock()
	t.publish()
}

func (t *Task) receivedBytes() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.received
}

// finish moves the task to a terminal state, notifies and releases subscribers
func (t *Task) finish(state State, err error) {
	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		return
	}
	t.state = state
	t.err = err
	t.finishedAt = time.Now()
	final := t.progressLocked()
	subs := t.subscribers
	t.subscribers = nil
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- final:
		default:
			// Make room so the terminal state is always the last value seen
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- final:
			default:
			}
		}
		close(ch)
	}
	t.cancel()
	close(t.done)
}

// publish sends the current progress to every subscriber without blocking
func (t *Task) publish() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.subscribers) == 0 {
		return
	}
	p := t.progressLocked()
	for _, ch := range t.subscribers {
		select {
		case ch <- p:
		default:
		}
	}
}
