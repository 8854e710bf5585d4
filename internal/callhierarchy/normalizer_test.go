package callhierarchy

import (
	"context"
	"errors"
	"testing"

	cerrors "callroot/internal/errors"
)

func key(symbol SymbolID, project ProjectID) symbolKey {
	return symbolKey{symbol: symbol, project: project}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		redirects   map[symbolKey]symbolKey
		unknown     map[symbolKey]bool
		in          symbolKey
		wantKind    NormalizationKind
		wantSymbol  SymbolID
		wantProject ProjectID
	}{
		{
			name:        "source symbol is unchanged",
			in:          key("Foo#Bar().", "app"),
			wantKind:    Unchanged,
			wantSymbol:  "Foo#Bar().",
			wantProject: "app",
		},
		{
			name: "metadata symbol redirected",
			redirects: map[symbolKey]symbolKey{
				key("Lib#Qux().", "lib-meta"): key("Lib#Qux().", "lib"),
			},
			in:          key("Lib#Qux().", "lib-meta"),
			wantKind:    Redirected,
			wantSymbol:  "Lib#Qux().",
			wantProject: "lib",
		},
		{
			name: "multi-hop chain followed to fixpoint",
			redirects: map[symbolKey]symbolKey{
				key("a.", "m1"): key("b.", "m2"),
				key("b.", "m2"): key("c.", "src"),
			},
			in:          key("a.", "m1"),
			wantKind:    Redirected,
			wantSymbol:  "c.",
			wantProject: "src",
		},
		{
			name:     "unmapped symbol is unresolvable",
			unknown:  map[symbolKey]bool{key("Ext#Zap().", "ext-meta"): true},
			in:       key("Ext#Zap().", "ext-meta"),
			wantKind: Unresolvable,
		},
		{
			name: "redirect to unresolvable target",
			redirects: map[symbolKey]symbolKey{
				key("a.", "meta"): key("a.", "gone"),
			},
			unknown:  map[symbolKey]bool{key("a.", "gone"): true},
			in:       key("a.", "meta"),
			wantKind: Unresolvable,
		},
		{
			name: "cycle is unresolvable",
			redirects: map[symbolKey]symbolKey{
				key("a.", "p"): key("b.", "q"),
				key("b.", "q"): key("a.", "p"),
			},
			in:       key("a.", "p"),
			wantKind: Unresolvable,
		},
		{
			name: "chain at max depth resolves",
			redirects: map[symbolKey]symbolKey{
				key("a.", "p"): key("b.", "p"),
				key("b.", "p"): key("c.", "p"),
				key("c.", "p"): key("d.", "p"),
			},
			in:          key("a.", "p"),
			wantKind:    Redirected,
			wantSymbol:  "d.",
			wantProject: "p",
		},
		{
			name: "chain beyond max depth is unresolvable",
			redirects: map[symbolKey]symbolKey{
				key("a.", "p"): key("b.", "p"),
				key("b.", "p"): key("c.", "p"),
				key("c.", "p"): key("d.", "p"),
				key("d.", "p"): key("e.", "p"),
			},
			in:       key("a.", "p"),
			wantKind: Unresolvable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapper := &fakeMapper{redirects: tt.redirects, unknown: tt.unknown}
			n := NewNormalizer(mapper, nil)

			got, err := n.Normalize(context.Background(), tt.in.symbol, tt.in.project)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got.Kind != tt.wantKind {
				t.Fatalf("Normalize() kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Symbol != tt.wantSymbol || got.Project != tt.wantProject {
				t.Errorf("Normalize() = (%q, %q), want (%q, %q)",
					got.Symbol, got.Project, tt.wantSymbol, tt.wantProject)
			}
			if calls := mapper.callCount(); calls > MaxRedirectDepth+1 {
				t.Errorf("mapper called %d times, want at most %d", calls, MaxRedirectDepth+1)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	mapper := &fakeMapper{redirects: map[symbolKey]symbolKey{
		key("a.", "m1"): key("b.", "m2"),
		key("b.", "m2"): key("c.", "src"),
		key("x.", "meta"): key("x.", "src"),
	}}
	n := NewNormalizer(mapper, nil)
	ctx := context.Background()

	for _, in := range []symbolKey{key("a.", "m1"), key("b.", "m2"), key("x.", "meta"), key("c.", "src")} {
		first, err := n.Normalize(ctx, in.symbol, in.project)
		if err != nil {
			t.Fatalf("Normalize(%v) error = %v", in, err)
		}
		second, err := n.Normalize(ctx, first.Symbol, first.Project)
		if err != nil {
			t.Fatalf("Normalize(normalized %v) error = %v", in, err)
		}
		if second.Kind != Unchanged {
			t.Errorf("second Normalize(%v) kind = %v, want unchanged", in, second.Kind)
		}
		if second.Symbol != first.Symbol || second.Project != first.Project {
			t.Errorf("second Normalize(%v) = %+v, want %+v", in, second, first)
		}
	}
}

func TestNormalize_MapperError(t *testing.T) {
	n := NewNormalizer(&fakeMapper{err: errBackend}, nil)

	_, err := n.Normalize(context.Background(), "a.", "p")
	if !cerrors.Is(err, cerrors.InternalError) {
		t.Errorf("Normalize() error = %v, want INTERNAL_ERROR", err)
	}
	if !errors.Is(err, errBackend) {
		t.Error("error should wrap the mapper error")
	}
}

func TestNormalize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mapper := &fakeMapper{
		redirects: map[symbolKey]symbolKey{key("a.", "m"): key("a.", "src")},
		onMap:     cancel,
	}
	n := NewNormalizer(mapper, nil)

	_, err := n.Normalize(ctx, "a.", "m")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Normalize() error = %v, want context.Canceled", err)
	}
	if calls := mapper.callCount(); calls != 1 {
		t.Errorf("mapper called %d times after cancellation, want 1", calls)
	}
}
