package vfs

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"/":                 "/",
		"/a/b/c":            "/a/b/c",
		"/a//b///c":         "/a/b/c",
		"/a/./b":            "/a/b",
		"/a/b/../c":         "/a/c",
		"/a/b/../../c":      "/c",
		"/a/b/c/":           "/a/b/c",
		"/../../escape":     "/escape",
		"/a/./.././b/./c/.": "/b/c",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"/a//b/../c/./d/", "/", "/x/y/z"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent on %q: %q vs %q", in, once, twice)
		}
	}
}
