package reconcile

// Action is what the importer does with a pulled transaction.
type Action string

const (
	ActionSkip   Action = "skip"
	ActionUpdate Action = "update"
	ActionReview Action = "review"
	ActionCreate Action = "create"
)

// Policy maps verdict confidence to an action. It is kept apart from the
// scorer so thresholds can move without touching the weights.
type Policy struct {
	SkipAt   int
	UpdateAt int
	ReviewAt int
}

func DefaultPolicy() Policy {
	return Policy{SkipAt: 95, UpdateAt: 80, ReviewAt: 70}
}

func (p Policy) Resolve(v Verdict) Action {
	if v.MatchID == "" {
		return ActionCreate
	}
	switch {
	case v.Confidence >= p.SkipAt:
		return ActionSkip
	case v.Confidence >= p.UpdateAt:
		return ActionUpdate
	case v.Confidence >= p.ReviewAt:
		return ActionReview
	}
	return ActionCreate
}
