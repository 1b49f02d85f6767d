package vector

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
)

// Provider turns text into an embedding. Implementations return an error
// (or an empty vector) when no embedding can be produced.
type Provider interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, text string) (Embedding, error)

// Embed implements Provider.
func (f ProviderFunc) Embed(ctx context.Context, text string) (Embedding, error) {
	return f(ctx, text)
}

// Unavailable is a provider that always fails. It stands in when no
// embedding backend is configured.
var Unavailable Provider = ProviderFunc(func(context.Context, string) (Embedding, error) {
	return nil, internalerr.ErrEmbeddingUnavailable
})

// rateLimited throttles calls to a remote provider.
type rateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// RateLimited wraps p so that at most perSecond calls start each second.
// A non-positive rate returns p unchanged.
func RateLimited(p Provider, perSecond float64) Provider {
	if perSecond <= 0 {
		return p
	}
	return &rateLimited{
		next:    p,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (r *rateLimited) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return r.next.Embed(ctx, text)
}
