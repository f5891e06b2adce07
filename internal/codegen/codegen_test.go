package codegen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newGen(t *testing.T) *Generator {
	t.Helper()
	g, err := New(DefaultPrefix)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestGenerate_WellFormed(t *testing.T) {
	g := newGen(t)
	for i := 0; i < 500; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !g.IsWellFormed(code) {
			t.Fatalf("generated code %q is not well formed", code)
		}
		if strings.ContainsAny(code[len(DefaultPrefix):], "0OI1L") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

func TestIsWellFormed(t *testing.T) {
	g := newGen(t)
	cases := []struct {
		code string
		want bool
	}{
		{"INF-7K3Q-M2XH", true},
		{"inf-7k3q-m2xh", true},
		{"  INF-7K3Q-M2XH ", true},
		{"INF-7K3Q-M2X", false},
		{"INF-7K3O-M2XH", false},
		{"INF-7K31-M2XH", false},
		{"ABC-7K3Q-M2XH", false},
		{"INF7K3QM2XH", false},
		{"", false},
	}
	for _, c := range cases {
		if got := g.IsWellFormed(c.code); got != c.want {
			t.Errorf("IsWellFormed(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestNew_InvalidPrefix(t *testing.T) {
	for _, p := range []string{"", "IN", "INFO", "I1F"} {
		if _, err := New(p); !errors.Is(err, ErrInvalidPrefix) {
			t.Errorf("New(%q) error = %v, want ErrInvalidPrefix", p, err)
		}
	}
}

func TestGenerateUnique_ExhaustsAfterTenAttempts(t *testing.T) {
	g := newGen(t)
	calls := 0
	_, err := g.GenerateUnique(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	if !errors.Is(err, ErrExhaustedAttempts) {
		t.Fatalf("expected ErrExhaustedAttempts, got %v", err)
	}
	if calls != MaxAttempts {
		t.Fatalf("exists called %d times, want %d", calls, MaxAttempts)
	}
}

func TestGenerateUnique_RetriesUntilFree(t *testing.T) {
	g := newGen(t)
	calls := 0
	code, err := g.GenerateUnique(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	if err != nil {
		t.Fatalf("GenerateUnique: %v", err)
	}
	if calls != 3 {
		t.Fatalf("exists called %d times, want 3", calls)
	}
	if !g.IsWellFormed(code) {
		t.Fatalf("code %q not well formed", code)
	}
}

func TestGenerateUnique_PropagatesLookupError(t *testing.T) {
	g := newGen(t)
	boom := errors.New("db down")
	_, err := g.GenerateUnique(context.Background(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
