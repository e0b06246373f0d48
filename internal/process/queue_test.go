package process

import (
	"testing"

	"github.com/goranb131/chthon/pkg/message"
)

func TestQueuePushPopOrder(t *testing.T) {
	q := NewMessageQueue()
	for i := 0; i < 3; i++ {
		if _, err := q.Push(&message.Message{Type: message.Type(i)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		m, ok := q.Pop()
		if !ok {
			t.Fatalf("expected message %d", i)
		}
		if int(m.Type) != i {
			t.Fatalf("got type %d, want %d", m.Type, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueFullReturnsError(t *testing.T) {
	q := NewMessageQueue()
	for i := 0; i < MaxMessages; i++ {
		if _, err := q.Push(&message.Message{}); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if _, err := q.Push(&message.Message{}); err != ErrQueueFull {
		t.Fatalf("got %v, want ErrQueueFull", err)
	}
}

func TestPushReportsWokeReceiver(t *testing.T) {
	q := NewMessageQueue()
	q.MarkBlocked()

	woke, err := q.Push(&message.Message{})
	if err != nil {
		t.Fatal(err)
	}
	if !woke {
		t.Fatal("expected Push to report waking the blocked receiver")
	}

	woke2, err := q.Push(&message.Message{})
	if err != nil {
		t.Fatal(err)
	}
	if woke2 {
		t.Fatal("second push should not report waking anyone")
	}
}
