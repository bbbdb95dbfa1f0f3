package migrate

import (
	"context"
	"fmt"
)

type DecisionKind string

const (
	DecisionCreate DecisionKind = "create"
	DecisionUpdate DecisionKind = "update"
	DecisionSkip   DecisionKind = "skip"
)

// Decision says what write a page needs on the destination.
type Decision struct {
	Kind       DecisionKind
	ExistingID int // set for updates

	// DuplicateIDs holds every matching destination id when more than one CMS
	// page carries the slug. ExistingID is then the lowest of them.
	DuplicateIDs []int
}

// SlugLookup finds existing destination pages by their exact slug.
type SlugLookup interface {
	FindIDsBySlug(ctx context.Context, slug string) ([]int, error)
}

// Matcher reconciles a normalized page against the destination by slug.
type Matcher struct {
	lookup SlugLookup
}

func NewMatcher(lookup SlugLookup) *Matcher {
	return &Matcher{lookup: lookup}
}

// Match returns Create when the slug is absent on the destination and Update
// with the existing id when present. Several matches for one slug are a data
// anomaly: the lowest id wins deterministically and the rest are surfaced via
// DuplicateIDs for the report.
func (m *Matcher) Match(ctx context.Context, slug string) (Decision, error) {
	ids, err := m.lookup.FindIDsBySlug(ctx, slug)
	if err != nil {
		return Decision{}, fmt.Errorf("match slug %q: %w", slug, err)
	}

	switch len(ids) {
	case 0:
		return Decision{Kind: DecisionCreate}, nil
	case 1:
		return Decision{Kind: DecisionUpdate, ExistingID: ids[0]}, nil
	default:
		lowest := ids[0]
		for _, id := range ids[1:] {
			if id < lowest {
				lowest = id
			}
		}
		return Decision{Kind: DecisionUpdate, ExistingID: lowest, DuplicateIDs: ids}, nil
	}
}
