package vfs

import "strings"

// Normalize canonicalizes path the way vfs_normalize_path does in the
// original kernel: collapse repeated slashes, drop "." segments, pop a
// segment for each ".." (without climbing above root), and strip any
// trailing slash except on the root itself. An absolute path stays
// absolute and a relative one stays relative, except that a relative path
// that collapses to nothing yields "/"; Normalize is idempotent.
func Normalize(path string) string {
	abs := strings.HasPrefix(path, "/")

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	joined := strings.Join(out, "/")
	if abs {
		return "/" + joined
	}
	if joined == "" {
		return "/"
	}
	return joined
}
