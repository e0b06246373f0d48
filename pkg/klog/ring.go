package klog

import (
	"container/ring"
	"sync"
)

// Ring is a fixed-size in-memory log buffer, the dmesg equivalent for a
// kernel that has no disk to spool a log file to before the VFS is even
// mounted. It implements io.Writer so it can be registered with AddLogger
// like any other destination.
type Ring struct {
	size int

	mu sync.Mutex
	r  *ring.Ring
}

// NewRing allocates a ring buffer holding the last size log lines.
func NewRing(size int) *Ring {
	return &Ring{r: ring.New(size), size: size}
}

func (l *Ring) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.r = l.r.Next()
	l.r.Value = string(p)
	return len(p), nil
}

// Dump returns the buffered log lines from oldest to newest.
func (l *Ring) Dump() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]string, 0, l.size)
	l.r.Next().Do(func(v interface{}) {
		if v == nil {
			return
		}
		res = append(res, v.(string))
	})
	return res
}
