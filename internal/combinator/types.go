package combinator

// Candidate is one multiset of stamps evaluated against the constraints.
// Stamps is always held in ascending order; that canonical form doubles as
// the deduplication key.
type Candidate struct {
	Stamps      []int
	TotalValue  int
	StampCount  int
	Overpayment int
}

// Constraints bound the search: the postage value every candidate must reach,
// the total price it must not exceed, and the maximum number of stamps per
// combination. All values are in cents except MaxStamps.
type Constraints struct {
	TargetCents   int
	MaxPriceCents int
	MaxStamps     int
}

// Summary aggregates the admissible set. MinTotal, MaxTotal, and FewestStamps
// are only meaningful when Count > 0.
type Summary struct {
	Count        int
	MinTotal     int
	MaxTotal     int
	FewestStamps int
}

// Result holds the ranked admissible candidates together with the derived
// recommendations. MinOverpayment and MinStamps point into Admissible; both
// are nil when the admissible set is empty.
type Result struct {
	Admissible     []Candidate
	MinOverpayment *Candidate
	MinStamps      *Candidate
	Summary        Summary
}

// Combinator describes the behaviour required from a stamp combination calculator.
type Combinator interface {
	Calculate(denominations []int, constraints Constraints) (Result, error)
}
