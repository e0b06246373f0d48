package namespace

import "testing"

func TestResolveNoBindings(t *testing.T) {
	var b Bindings
	if got := b.Resolve("/tmp/foo"); got != "/tmp/foo" {
		t.Fatalf("got %q, want identity", got)
	}
}

func TestResolveExactPrefix(t *testing.T) {
	var b Bindings
	if err := b.Bind("/tmp", "/private/tmp", Replace); err != nil {
		t.Fatal(err)
	}
	if got := b.Resolve("/tmp/foo/bar"); got != "/private/tmp/foo/bar" {
		t.Fatalf("got %q, want /private/tmp/foo/bar", got)
	}
	if got := b.Resolve("/tmp"); got != "/private/tmp" {
		t.Fatalf("got %q, want /private/tmp", got)
	}
}

func TestResolveDoesNotMatchPartialSegment(t *testing.T) {
	var b Bindings
	if err := b.Bind("/tmp", "/private/tmp", Replace); err != nil {
		t.Fatal(err)
	}
	if got := b.Resolve("/tmpfoo"); got != "/tmpfoo" {
		t.Fatalf("got %q, want identity (no partial segment match)", got)
	}
}

func TestMostRecentBindWins(t *testing.T) {
	var b Bindings
	if err := b.Bind("/tmp", "/private/tmp", Replace); err != nil {
		t.Fatal(err)
	}
	if err := b.Bind("/tmp", "/ramfs", Replace); err != nil {
		t.Fatal(err)
	}
	if got := b.Resolve("/tmp/x"); got != "/ramfs/x" {
		t.Fatalf("got %q, want /ramfs/x (last bind should shadow)", got)
	}
}

func TestUnbind(t *testing.T) {
	var b Bindings
	_ = b.Bind("/tmp", "/private/tmp", Replace)
	b.Unbind("/tmp")
	if got := b.Resolve("/tmp/x"); got != "/tmp/x" {
		t.Fatalf("got %q, want identity after unbind", got)
	}
}

func TestBindRejectsEmptyPrefix(t *testing.T) {
	var b Bindings
	if err := b.Bind("", "/private/tmp", Replace); err != ErrEmptyPrefix {
		t.Fatalf("got %v, want ErrEmptyPrefix", err)
	}
	if err := b.Bind("/tmp", "", Replace); err != ErrEmptyPrefix {
		t.Fatalf("got %v, want ErrEmptyPrefix", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var b Bindings
	_ = b.Bind("/tmp", "/private/tmp", Replace)

	clone := b.Clone()
	_ = clone.Bind("/x", "/y", Replace)

	if len(b.List()) != 1 {
		t.Fatalf("original bindings mutated by clone: %v", b.List())
	}
	if len(clone.List()) != 2 {
		t.Fatalf("clone missing its own bind: %v", clone.List())
	}
}
