package combinator

import (
	"cmp"
	"iter"
	"slices"
	"sort"
)

const maxDenominations = 10

type enumCombinator struct{}

// New creates a Combinator based on pruned multiset enumeration.
func New() Combinator {
	return &enumCombinator{}
}

func (c *enumCombinator) Calculate(denominations []int, constraints Constraints) (Result, error) {
	normalized, err := normalizeDenominations(denominations)
	if err != nil {
		return Result{}, err
	}
	if err := validateConstraints(constraints); err != nil {
		return Result{}, err
	}

	admissible := filter(enumerate(normalized, constraints.MaxStamps, constraints.MaxPriceCents), constraints)
	rank(admissible)
	admissible = dedupe(admissible)

	result := Result{Admissible: admissible}
	if len(admissible) == 0 {
		return result, nil
	}

	result.MinOverpayment = pickMinOverpayment(admissible)
	result.MinStamps = pickMinStamps(admissible)
	result.Summary = summarize(admissible)
	return result, nil
}

// rawCandidate is a combination before target filtering: its stamps in
// canonical ascending order plus the precomputed total.
type rawCandidate struct {
	stamps []int
	total  int
}

// enumerate yields every multiset of 1..maxStamps denominations drawn with
// repetition from the ascending-sorted input. Candidates are produced by
// non-decreasing index recursion, so each arrives already in canonical order.
// Partial sums only grow, which makes the maxPrice cut safe; because the
// denominations are sorted, cutting one branch cuts all larger siblings too.
// The returned sequence is finite and restartable.
func enumerate(sorted []int, maxStamps, maxPriceCents int) iter.Seq[rawCandidate] {
	return func(yield func(rawCandidate) bool) {
		stack := make([]int, 0, maxStamps)
		var walk func(start, total int) bool
		walk = func(start, total int) bool {
			for i := start; i < len(sorted); i++ {
				next := total + sorted[i]
				if next > maxPriceCents {
					break
				}
				stack = append(stack, sorted[i])
				if !yield(rawCandidate{stamps: slices.Clone(stack), total: next}) {
					return false
				}
				if len(stack) < maxStamps {
					if !walk(i, next) {
						return false
					}
				}
				stack = stack[:len(stack)-1]
			}
			return true
		}
		walk(0, 0)
	}
}

// filter keeps exactly the candidates satisfying all three constraints and
// annotates each survivor with its overpayment. The enumerator already bounds
// price and count; the checks stay explicit so the contract holds regardless
// of upstream behaviour. A target above maxPrice simply yields no survivors.
func filter(raw iter.Seq[rawCandidate], constraints Constraints) []Candidate {
	var admissible []Candidate
	for candidate := range raw {
		if candidate.total < constraints.TargetCents ||
			candidate.total > constraints.MaxPriceCents ||
			len(candidate.stamps) > constraints.MaxStamps {
			continue
		}
		admissible = append(admissible, Candidate{
			Stamps:      candidate.stamps,
			TotalValue:  candidate.total,
			StampCount:  len(candidate.stamps),
			Overpayment: candidate.total - constraints.TargetCents,
		})
	}
	return admissible
}

// rank orders candidates by total value, then stamp count, then the canonical
// stamp sequence. The comparator is total, so the ordering is reproducible
// for identical inputs.
func rank(candidates []Candidate) {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if d := cmp.Compare(a.TotalValue, b.TotalValue); d != 0 {
			return d
		}
		if d := cmp.Compare(a.StampCount, b.StampCount); d != 0 {
			return d
		}
		return slices.Compare(a.Stamps, b.Stamps)
	})
}

// dedupe removes candidates sharing a canonical composition. The enumerator
// never emits duplicates, but the no-duplicates guarantee must not depend on
// that; after ranking, equal compositions are adjacent.
func dedupe(candidates []Candidate) []Candidate {
	return slices.CompactFunc(candidates, func(a, b Candidate) bool {
		return slices.Equal(a.Stamps, b.Stamps)
	})
}

func pickMinOverpayment(admissible []Candidate) *Candidate {
	best := 0
	for i := 1; i < len(admissible); i++ {
		candidate, current := admissible[i], admissible[best]
		if candidate.Overpayment < current.Overpayment ||
			(candidate.Overpayment == current.Overpayment && candidate.StampCount < current.StampCount) {
			best = i
		}
	}
	return &admissible[best]
}

func pickMinStamps(admissible []Candidate) *Candidate {
	best := 0
	for i := 1; i < len(admissible); i++ {
		candidate, current := admissible[i], admissible[best]
		if candidate.StampCount < current.StampCount ||
			(candidate.StampCount == current.StampCount && candidate.Overpayment < current.Overpayment) {
			best = i
		}
	}
	return &admissible[best]
}

func summarize(admissible []Candidate) Summary {
	summary := Summary{
		Count:        len(admissible),
		MinTotal:     admissible[0].TotalValue,
		MaxTotal:     admissible[len(admissible)-1].TotalValue,
		FewestStamps: admissible[0].StampCount,
	}
	for _, candidate := range admissible[1:] {
		if candidate.StampCount < summary.FewestStamps {
			summary.FewestStamps = candidate.StampCount
		}
	}
	return summary
}

func normalizeDenominations(denominations []int) ([]int, error) {
	if len(denominations) == 0 {
		return nil, ErrInvalidDenominations
	}

	unique := make(map[int]struct{}, len(denominations))
	for _, value := range denominations {
		if value <= 0 {
			return nil, ErrInvalidDenominations
		}
		unique[value] = struct{}{}
		if len(unique) > maxDenominations {
			return nil, ErrInvalidDenominations
		}
	}

	normalized := make([]int, 0, len(unique))
	for value := range unique {
		normalized = append(normalized, value)
	}
	sort.Ints(normalized)

	return normalized, nil
}

func validateConstraints(constraints Constraints) error {
	if constraints.TargetCents <= 0 {
		return ErrInvalidTarget
	}
	if constraints.MaxPriceCents <= 0 {
		return ErrInvalidMaxPrice
	}
	if constraints.MaxStamps < 1 {
		return ErrInvalidMaxStamps
	}
	return nil
}
