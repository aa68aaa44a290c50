package gate

import (
	"context"
	"math"

	"github.com/facegate/facegate/internal/storage"
)

// Matcher evaluates a live embedding against every enrolled identity with a
// linear scan. No index is maintained; the registry is assumed small.
type Matcher struct {
	identities storage.IdentityStore
	threshold  float64
}

// NewMatcher creates a matcher with the given acceptance threshold (the
// maximum embedding distance still considered the same identity).
func NewMatcher(identities storage.IdentityStore, threshold float64) *Matcher {
	return &Matcher{identities: identities, threshold: threshold}
}

// Match holds the winning identity and the derived confidence score.
type Match struct {
	Identity   storage.Identity
	Confidence float64 // 0-100, two decimal places
}

// Match scans all enrolled identities and returns the closest one under the
// acceptance threshold, or ErrNoMatch. A candidate replaces the current best
// only on strictly smaller distance, so ties go to the first-enrolled
// identity.
func (m *Matcher) Match(ctx context.Context, live []float32) (*Match, error) {
	identities, err := m.identities.ListIdentities(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	var best *storage.Identity
	bestDistance := math.Inf(1)
	for i := range identities {
		d := EuclideanDistance(identities[i].Embedding, live)
		if d < m.threshold && d < bestDistance {
			bestDistance = d
			best = &identities[i]
		}
	}

	if best == nil {
		return nil, ErrNoMatch
	}
	return &Match{
		Identity:   *best,
		Confidence: math.Round((1-bestDistance)*100*100) / 100,
	}, nil
}

// EuclideanDistance computes the Euclidean distance between two vectors.
// Mismatched or empty vectors yield +Inf so they never match anything.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
