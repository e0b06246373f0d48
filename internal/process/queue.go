package process

import (
	"errors"
	"sync"

	"github.com/goranb131/chthon/pkg/message"
)

// MaxMessages bounds a process's message queue, matching the original's
// MAX_MESSAGES ring buffer.
const MaxMessages = 32

// ErrQueueFull is returned by Push when a process's queue has no free slot.
var ErrQueueFull = errors.New("process: message queue full")

// MessageQueue is the fixed-capacity ring buffer queue_message/
// receive_message operate on. It tracks msg_blocked itself so Push can
// report whether it just woke a receiver parked on an empty queue.
type MessageQueue struct {
	mu      sync.Mutex
	slots   [MaxMessages]*message.Message
	head    int
	tail    int
	count   int
	blocked bool
}

// NewMessageQueue returns an empty queue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{}
}

// Push enqueues msg, returning ErrQueueFull if the ring is at capacity. The
// second return value reports whether a receiver was parked waiting
// (msg_blocked), mirroring queue_message's "if (proc->msg_blocked) clear
// it" — a caller can use this to decide whether to wake the owning
// process with Scheduler.Wake.
func (q *MessageQueue) Push(msg *message.Message) (wokeReceiver bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count >= MaxMessages {
		return false, ErrQueueFull
	}
	q.slots[q.tail] = msg
	q.tail = (q.tail + 1) % MaxMessages
	q.count++

	if q.blocked {
		q.blocked = false
		return true, nil
	}
	return false, nil
}

// Pop removes and returns the oldest message, or ok=false if the queue is
// empty. A non-blocking caller (RECEIVE with NONBLOCK set) should treat
// ok=false as immediate failure; a blocking caller marks itself blocked
// first via MarkBlocked and retries after being woken.
func (q *MessageQueue) Pop() (msg *message.Message, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil, false
	}
	msg = q.slots[q.head]
	q.slots[q.head] = nil
	q.head = (q.head + 1) % MaxMessages
	q.count--
	return msg, true
}

// MarkBlocked records that this process is about to park waiting for a
// message, matching current->msg_blocked = 1 in receive_message. Must be
// called with the queue still observed empty, immediately before yielding.
func (q *MessageQueue) MarkBlocked() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blocked = true
}

// Len reports the number of queued messages, for tests and diagnostics.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
