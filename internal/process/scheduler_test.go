package process

import (
	"testing"
	"time"
)

func TestForkWaitReapsZombie(t *testing.T) {
	table := NewTable()
	sched := NewScheduler(table)

	parent := table.Create(0)
	child := sched.Fork(parent)

	sched.Launch(parent, func(p *Process) int {
		// parent's only job here is to observe the child exit; the real
		// WAIT handler (internal/dispatch) does the zombie scan + Yield,
		// exercised at that layer. Here we just confirm scheduling.
		for {
			if z := table.ZombieChild(p.ID); z != nil {
				return z.ExitStatus
			}
			sched.Yield(p)
		}
	})
	sched.Launch(child, func(p *Process) int {
		return 7
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		parent.Lock()
		st := parent.State
		es := parent.ExitStatus
		parent.Unlock()
		if st == Zombie {
			if es != 7 {
				t.Fatalf("parent exit status = %d, want 7", es)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for parent to observe child exit")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWakeRequeuesBlockedProcess(t *testing.T) {
	table := NewTable()
	sched := NewScheduler(table)

	p := table.Create(0)
	resumed := make(chan struct{})

	sched.Launch(p, func(proc *Process) int {
		sched.Yield(proc)
		close(resumed)
		return 0
	})

	// give the goroutine a moment to reach Yield and go BLOCKED
	deadline := time.Now().Add(2 * time.Second)
	for {
		p.Lock()
		st := p.State
		p.Unlock()
		if st == Blocked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("process never reached BLOCKED")
		}
		time.Sleep(time.Millisecond)
	}

	sched.Wake(p)

	select {
	case <-resumed:
	case <-time.After(2 * time.Second):
		t.Fatal("process never resumed after Wake")
	}
}

func TestRoundRobinFairness(t *testing.T) {
	table := NewTable()
	sched := NewScheduler(table)

	const n = 4
	order := make(chan int, n)
	procs := make([]*Process, n)
	for i := 0; i < n; i++ {
		procs[i] = table.Create(0)
	}
	for i, p := range procs {
		i, p := i, p
		sched.Launch(p, func(proc *Process) int {
			order <- i
			return 0
		})
	}

	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		select {
		case idx := <-order:
			seen[idx] = true
		case <-time.After(2 * time.Second):
			t.Fatal("not all processes ran")
		}
	}
	if len(seen) != n {
		t.Fatalf("only %d of %d processes ran", len(seen), n)
	}
}
