package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"City Power", " city power ", 100},
		{"City Power", "City Power Co", 85},
		{"kitten", "sitting", 57},
		{"abc", "xyz", 0},
		{"", "abc", 0},
		{"", "", 0},
		{"1001", "1002", 75},
		{"Café", "Cafe", 75},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Similarity(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestPolicyThresholds(t *testing.T) {
	p := DefaultPolicy()
	cases := map[int]Action{100: ActionSkip, 95: ActionSkip, 94: ActionUpdate, 80: ActionUpdate, 79: ActionReview, 70: ActionReview, 69: ActionCreate, 0: ActionCreate}
	for conf, want := range cases {
		assert.Equal(t, want, p.Resolve(Verdict{MatchID: "x", Confidence: conf}), "confidence %d", conf)
	}

	tuned := Policy{SkipAt: 99, UpdateAt: 90, ReviewAt: 50}
	assert.Equal(t, ActionUpdate, tuned.Resolve(Verdict{MatchID: "x", Confidence: 95}))
	assert.Equal(t, ActionReview, tuned.Resolve(Verdict{MatchID: "x", Confidence: 55}))
}
