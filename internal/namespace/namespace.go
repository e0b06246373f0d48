// Package namespace implements the per-process path-binding list that the
// Dispatcher consults before any path-bearing message reaches the VFS,
// grounded on resolve_namespace_path in the original kernel's vfs.c — the
// new_prefix -> old_prefix direction that spec §4.3 and §9 both call the
// correct one (the original's resolve_path, used only by open/create,
// substituted in the opposite direction; that asymmetry is not reproduced
// here, see DESIGN.md).
package namespace

import "strings"

// Mode distinguishes how a binding layers onto whatever the target prefix
// already resolved to. Only Replace is required for conformance (spec §3);
// Before and After are accepted but no dispatcher case currently installs
// them.
type Mode int

const (
	Replace Mode = iota
	Before
	After
)

// Binding is one node of a process's ordered bind list: requests under
// NewPrefix are rewritten to OldPrefix.
type Binding struct {
	NewPrefix string
	OldPrefix string
	Mode      Mode
}

// Bindings is the ordered per-process binding list. The zero value is an
// empty list that resolves every path to itself.
type Bindings struct {
	list []Binding
}

// Bind installs a new binding at the front of the list, so the most
// recently bound prefix wins ties the same way a real mount namespace
// shadows an older one. source and target must be non-empty (spec §7:
// "bind with empty prefixes" is a policy error).
func (b *Bindings) Bind(target, source string, mode Mode) error {
	if target == "" || source == "" {
		return ErrEmptyPrefix
	}
	b.list = append([]Binding{{NewPrefix: target, OldPrefix: source, Mode: mode}}, b.list...)
	return nil
}

// Unbind removes every binding whose NewPrefix equals target.
func (b *Bindings) Unbind(target string) {
	kept := b.list[:0]
	for _, bind := range b.list {
		if bind.NewPrefix != target {
			kept = append(kept, bind)
		}
	}
	b.list = kept
}

// Resolve rewrites path against the first binding whose NewPrefix is a
// prefix of it, substituting OldPrefix and preserving exactly one '/' at
// the join. If no binding matches, path is returned unchanged (spec §8:
// "namespace resolution preserves the identity when no binding matches").
func (b *Bindings) Resolve(path string) string {
	for _, bind := range b.list {
		if rest, ok := cutPrefix(path, bind.NewPrefix); ok {
			return join(bind.OldPrefix, rest)
		}
	}
	return path
}

// List returns the bindings in resolution order, for BIND/UNBIND
// introspection and for deep-copying on fork.
func (b *Bindings) List() []Binding {
	out := make([]Binding, len(b.list))
	copy(out, b.list)
	return out
}

// Clone deep-copies the binding list, used by fork so parent and child never
// share a backing array (spec §4.5: namespaces are inherited, not shared).
func (b *Bindings) Clone() *Bindings {
	out := &Bindings{list: make([]Binding, len(b.list))}
	copy(out.list, b.list)
	return out
}

func cutPrefix(path, prefix string) (rest string, ok bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest = path[len(prefix):]
	// require a full-segment match: "/priv" must not match "/private/x"
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return rest, true
}

func join(prefix, rest string) string {
	if rest == "" {
		return prefix
	}
	if strings.HasSuffix(prefix, "/") {
		return prefix + strings.TrimPrefix(rest, "/")
	}
	if !strings.HasPrefix(rest, "/") {
		return prefix + "/" + rest
	}
	return prefix + rest
}
