package credentials

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	got := Split(" a, b,,a , c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Split = %v", got)
	}
}

func TestEnvStore(t *testing.T) {
	t.Setenv(EnvVar, "k1,k2")
	keys, err := EnvStore{}.Keys()
	if err != nil || len(keys) != 2 {
		t.Fatalf("keys=%v err=%v", keys, err)
	}
}

func TestRingRotates(t *testing.T) {
	r, err := NewRing(StaticStore{"one", "two", "three"})
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	if r.Current() != "one" {
		t.Fatalf("current = %s", r.Current())
	}
	if r.Rotate() != "two" || r.Rotate() != "three" || r.Rotate() != "one" {
		t.Fatal("rotation order wrong")
	}
}

func TestRingEmpty(t *testing.T) {
	t.Setenv(EnvVar, "")
	if _, err := NewRing(EnvStore{}); !errors.Is(err, ErrNoKeys) {
		t.Fatalf("err = %v, want ErrNoKeys", err)
	}
}

func TestHint(t *testing.T) {
	if h := Hint("sk-abcdef123456"); h != "...3456" {
		t.Fatalf("Hint = %s", h)
	}
	if h := Hint("abc"); h != "***" {
		t.Fatalf("Hint = %s", h)
	}
}
