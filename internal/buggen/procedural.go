package buggen

import (
	"context"

	"swesmith/internal/adapter"
	"swesmith/internal/logging"
)

// ProceduralGenerator produces candidate patches by applying each
// procedural variant's applicability predicate + rewrite to every entity,
// per spec §4.4.1.
type ProceduralGenerator struct{}

// NewProceduralGenerator returns a ready-to-use ProceduralGenerator.
func NewProceduralGenerator() *ProceduralGenerator { return &ProceduralGenerator{} }

// Generate walks entities in order, trying every variant in AllVariants
// against each, and stops once maxBugs candidates have been produced.
// maxBugs <= 0 emits nothing, per spec §8's "max_bugs=0 -> generator emits
// nothing and exits 0" boundary.
func (g *ProceduralGenerator) Generate(ctx context.Context, fileSource string, entities []adapter.Entity, maxBugs int) []Candidate {
	var out []Candidate
	if maxBugs <= 0 {
		return out
	}
	for _, e := range entities {
		for _, variant := range AllVariants {
			if len(out) >= maxBugs {
				logging.Get(logging.CategoryBuggen).Info("max_bugs=%d reached, stopping procedural generation", maxBugs)
				return out
			}
			select {
			case <-ctx.Done():
				return out
			default:
			}

			mutated, ok := rewrite(variant, e.SrcCode)
			if !ok {
				continue
			}
			cand, ok := newCandidate(ProceduralKind(variant), e, fileSource, mutated)
			if !ok {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}
