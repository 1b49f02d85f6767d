package vector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Embedding
		want float64
	}{
		{"identical", Embedding{1, 2, 3}, Embedding{1, 2, 3}, 1},
		{"orthogonal", Embedding{1, 0}, Embedding{0, 1}, 0},
		{"opposite", Embedding{1, 0}, Embedding{-1, 0}, -1},
		{"pythagorean", Embedding{3, 4}, Embedding{4, 3}, 0.96},
		{"zero vector", Embedding{1, 2}, Embedding{0, 0}, 0},
		{"empty", Embedding{}, Embedding{1}, 0},
		{"nil", nil, nil, 0},
		{"length mismatch", Embedding{1, 0}, Embedding{1, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("Cosine returned NaN")
			}
		})
	}
}

func TestCosineExactValue(t *testing.T) {
	// 17^2 + 10^2 + 3^2 + 1 + 1 = 400, so the similarity is exactly 17/20.
	got := Cosine(Embedding{1, 0, 0, 0, 0}, Embedding{17, 10, 3, 1, 1})
	if got != 0.85 {
		t.Fatalf("expected exactly 0.85, got %v", got)
	}
}

func TestEmbeddingIsZero(t *testing.T) {
	if !(Embedding{0, 0, 0}).IsZero() {
		t.Error("all-zero vector should be zero")
	}
	if !(Embedding(nil)).IsZero() {
		t.Error("nil vector should be zero")
	}
	if (Embedding{0, 0.1}).IsZero() {
		t.Error("non-zero vector reported as zero")
	}
}

func TestLinearNearest(t *testing.T) {
	idx := NewLinear()
	if _, ok := idx.Nearest(Embedding{1, 0}); ok {
		t.Fatal("empty index should report no hit")
	}

	idx.Add("east", Embedding{1, 0})
	idx.Add("north", Embedding{0, 1})
	idx.Add("northeast", Embedding{1, 1})

	hit, ok := idx.Nearest(Embedding{0.9, 0.1})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Name != "east" {
		t.Errorf("expected east, got %s (%.3f)", hit.Name, hit.Similarity)
	}
	if idx.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", idx.Len())
	}
}

func TestLinearTieBreaksLexicographically(t *testing.T) {
	a := NewLinear()
	a.Add("zeta", Embedding{1, 0})
	a.Add("alpha", Embedding{2, 0})

	b := NewLinear()
	b.Add("alpha", Embedding{2, 0})
	b.Add("zeta", Embedding{1, 0})

	hitA, _ := a.Nearest(Embedding{5, 0})
	hitB, _ := b.Nearest(Embedding{5, 0})
	if hitA.Name != "alpha" || hitB.Name != "alpha" {
		t.Errorf("expected alpha regardless of order, got %s and %s", hitA.Name, hitB.Name)
	}
}

func TestLinearZeroVectorNeverWins(t *testing.T) {
	idx := NewLinear()
	idx.Add("blank", Embedding{0, 0, 0})
	idx.Add("real", Embedding{0, 0, 1})

	hit, _ := idx.Nearest(Embedding{0, 0.1, 1})
	if hit.Name != "real" {
		t.Fatalf("expected real, got %s", hit.Name)
	}

	only := NewLinear()
	only.Add("blank", Embedding{0, 0, 0})
	hit, _ = only.Nearest(Embedding{1, 1, 1})
	if hit.Similarity != 0 {
		t.Errorf("similarity against zero vector should be 0, got %v", hit.Similarity)
	}
}

func TestLinearAddCopies(t *testing.T) {
	idx := NewLinear()
	e := Embedding{1, 0}
	idx.Add("x", e)
	e[0] = 0
	e[1] = 1

	hit, _ := idx.Nearest(Embedding{1, 0})
	if hit.Similarity != 1 {
		t.Errorf("index should hold its own copy, similarity %v", hit.Similarity)
	}
}

func TestUnavailableProvider(t *testing.T) {
	_, err := Unavailable.Embed(context.Background(), "anything")
	if !errors.Is(err, internalerr.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestRateLimitedPassThrough(t *testing.T) {
	calls := 0
	p := ProviderFunc(func(ctx context.Context, text string) (Embedding, error) {
		calls++
		return Embedding{1}, nil
	})

	if RateLimited(p, 0) == nil {
		t.Fatal("zero rate should return the provider")
	}

	limited := RateLimited(p, 1000)
	for i := 0; i < 3; i++ {
		if _, err := limited.Embed(context.Background(), "x"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRateLimitedHonoursContext(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, text string) (Embedding, error) {
		return Embedding{1}, nil
	})
	limited := RateLimited(p, 0.001)

	// First call consumes the burst token.
	if _, err := limited.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("first Embed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := limited.Embed(ctx, "x"); err == nil {
		t.Fatal("expected rate limit wait to fail on short deadline")
	}
}
