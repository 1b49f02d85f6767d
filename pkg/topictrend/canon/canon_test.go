package canon

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/pkg/topictrend/keywords"
	"github.com/cognicore/topictrend/pkg/topictrend/store"
	"github.com/cognicore/topictrend/pkg/topictrend/store/memstore"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// fakeProvider returns fixed vectors per phrase and counts calls.
type fakeProvider struct {
	vectors map[string]vector.Embedding
	calls   int
}

func (f *fakeProvider) Embed(ctx context.Context, text string) (vector.Embedding, error) {
	f.calls++
	v, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector")
	}
	return v, nil
}

func newStore(t *testing.T, backend *memstore.Store) *store.TopicStore {
	t.Helper()
	s, err := store.Load(context.Background(), backend)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return s
}

func quiet(t *testing.T) {
	t.Helper()
	prev := logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(prev) })
}

func TestKeywordPrecedence(t *testing.T) {
	p := &fakeProvider{vectors: map[string]vector.Embedding{"very expensive item": {1, 0}}}
	backend := memstore.New()
	s := newStore(t, backend)
	c := New(keywords.NewNormalizer([]keywords.Rule{{Topic: "pricing", Keywords: []string{"expensive"}}}), p, s)

	topic, ok := c.Canonicalize(context.Background(), "very expensive item")
	if !ok || topic != "pricing" {
		t.Fatalf("expected pricing, got %q (%v)", topic, ok)
	}
	if p.calls != 0 {
		t.Errorf("keyword match must not call the embedding provider, calls=%d", p.calls)
	}
	if s.Len() != 0 || backend.Saves() != 0 {
		t.Error("keyword topics must never be registered")
	}
}

func TestKeywordPrecedenceOverStore(t *testing.T) {
	// A learned topic that would match semantically still loses to the rule table.
	backend := memstore.New(store.Entry{Name: "costly meal", Embedding: vector.Embedding{1, 0}})
	s := newStore(t, backend)
	p := &fakeProvider{vectors: map[string]vector.Embedding{"expensive meal": {1, 0}}}
	c := New(keywords.Default(), p, s)

	res := c.Resolve(context.Background(), "expensive meal")
	if res.Outcome != Keyword || res.Topic != "pricing" {
		t.Fatalf("expected keyword pricing, got %+v", res)
	}
}

func TestRegistersNewTopic(t *testing.T) {
	backend := memstore.New()
	s := newStore(t, backend)
	p := &fakeProvider{vectors: map[string]vector.Embedding{"app crashes": {0, 1, 0}}}
	c := New(keywords.Default(), p, s)

	res := c.Resolve(context.Background(), "app crashes")
	if res.Outcome != Registered || res.Topic != "app crashes" {
		t.Fatalf("expected registration, got %+v", res)
	}
	if _, ok := s.Get("app crashes"); !ok {
		t.Error("topic should be in the store")
	}
	if backend.Saves() != 1 {
		t.Errorf("expected write-through save, got %d", backend.Saves())
	}
}

func TestMatchesExistingTopic(t *testing.T) {
	s := newStore(t, memstore.New(store.Entry{Name: "app crashes", Embedding: vector.Embedding{0, 1, 0}}))
	p := &fakeProvider{vectors: map[string]vector.Embedding{"app keeps crashing": {0, 0.98, 0.1}}}
	c := New(keywords.Default(), p, s)

	res := c.Resolve(context.Background(), "app keeps crashing")
	if res.Outcome != Matched || res.Topic != "app crashes" {
		t.Fatalf("expected match to app crashes, got %+v", res)
	}
	if s.Len() != 1 {
		t.Errorf("match must not register, store has %d", s.Len())
	}
}

func TestThresholdOption(t *testing.T) {
	s := newStore(t, memstore.New(store.Entry{Name: "app crashes", Embedding: vector.Embedding{0, 1, 0}}))
	p := &fakeProvider{vectors: map[string]vector.Embedding{"app keeps crashing": {0, 0.98, 0.1}}}
	c := New(keywords.Default(), p, s, WithThreshold(0.999))

	if c.Threshold() != 0.999 {
		t.Fatalf("threshold not applied")
	}
	res := c.Resolve(context.Background(), "app keeps crashing")
	if res.Outcome != Registered {
		t.Fatalf("strict threshold should force registration, got %+v", res)
	}
}

func TestEmbeddingFailureDrops(t *testing.T) {
	quiet(t)
	backend := memstore.New()
	s := newStore(t, backend)
	c := New(keywords.Default(), vector.Unavailable, s)

	if topic, ok := c.Canonicalize(context.Background(), "xyz123 unmatched gibberish"); ok {
		t.Fatalf("expected drop, got %q", topic)
	}
	if s.Len() != 0 || backend.Saves() != 0 {
		t.Error("failed embedding must not touch the store")
	}
	st := c.Stats()
	if st.Dropped != 1 || st.EmbedFailures != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestZeroEmbeddingDrops(t *testing.T) {
	quiet(t)
	s := newStore(t, memstore.New())
	p := &fakeProvider{vectors: map[string]vector.Embedding{
		"blank": {0, 0, 0},
		"empty": {},
	}}
	c := New(keywords.Default(), p, s)

	for _, phrase := range []string{"blank", "empty"} {
		if _, ok := c.Canonicalize(context.Background(), phrase); ok {
			t.Errorf("%q: zero or empty vector must be treated as failure", phrase)
		}
	}
	if s.Len() != 0 {
		t.Error("invalid vectors must not be registered")
	}
}

func TestBlankPhraseDrops(t *testing.T) {
	p := &fakeProvider{}
	c := New(keywords.Default(), p, newStore(t, memstore.New()))
	if _, ok := c.Canonicalize(context.Background(), "   "); ok {
		t.Fatal("blank phrase should be dropped")
	}
	if p.calls != 0 {
		t.Error("blank phrase should not be embedded")
	}
}

func TestDeterministic(t *testing.T) {
	s := newStore(t, memstore.New(
		store.Entry{Name: "app crashes", Embedding: vector.Embedding{0, 1, 0}},
		store.Entry{Name: "refund pending", Embedding: vector.Embedding{0, 0, 1}},
	))
	p := &fakeProvider{vectors: map[string]vector.Embedding{"money not refunded": {0, 0.1, 0.99}}}
	c := New(keywords.Default(), p, s)

	first, ok1 := c.Canonicalize(context.Background(), "money not refunded")
	second, ok2 := c.Canonicalize(context.Background(), "money not refunded")
	if first != second || ok1 != ok2 {
		t.Fatalf("non-deterministic result: %q/%v vs %q/%v", first, ok1, second, ok2)
	}
	if first != "refund pending" {
		t.Errorf("expected refund pending, got %q", first)
	}
}

func TestSecondOccurrenceMatchesRegisteredTopic(t *testing.T) {
	s := newStore(t, memstore.New())
	p := &fakeProvider{vectors: map[string]vector.Embedding{"rider rude": {1, 0}}}
	c := New(keywords.Default(), p, s)
	ctx := context.Background()

	first := c.Resolve(ctx, "rider rude")
	second := c.Resolve(ctx, "rider rude")
	if first.Outcome != Registered || second.Outcome != Matched {
		t.Fatalf("expected registered then matched, got %v then %v", first.Outcome, second.Outcome)
	}
	if second.Topic != "rider rude" {
		t.Errorf("expected same topic, got %q", second.Topic)
	}
}

func TestPersistFailureContinuesInMemory(t *testing.T) {
	quiet(t)
	backend := memstore.New()
	s := newStore(t, backend)
	backend.SetSaveError(errors.New("read-only filesystem"))
	p := &fakeProvider{vectors: map[string]vector.Embedding{
		"rider rude":      {1, 0},
		"rider very rude": {0.99, 0.05},
	}}
	c := New(keywords.Default(), p, s)
	ctx := context.Background()

	res := c.Resolve(ctx, "rider rude")
	if res.Outcome != Registered {
		t.Fatalf("expected registration despite persist failure, got %+v", res)
	}
	if c.Stats().PersistFailures != 1 {
		t.Errorf("persist failure not counted: %+v", c.Stats())
	}

	// Later phrases in the same run still see the in-memory topic.
	res = c.Resolve(ctx, "rider very rude")
	if res.Outcome != Matched || res.Topic != "rider rude" {
		t.Errorf("expected match against in-memory topic, got %+v", res)
	}
}

func TestNilStoreKeywordOnly(t *testing.T) {
	c := New(keywords.Default(), nil, nil)
	if topic, ok := c.Canonicalize(context.Background(), "too expensive"); !ok || topic != "pricing" {
		t.Errorf("expected pricing, got %q", topic)
	}
	if _, ok := c.Canonicalize(context.Background(), "rider rude"); ok {
		t.Error("without a store unmatched phrases are dropped")
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Dropped: "dropped", Keyword: "keyword", Matched: "matched", Registered: "registered"} {
		if o.String() != want {
			t.Errorf("%d: got %q want %q", o, o.String(), want)
		}
	}
}
