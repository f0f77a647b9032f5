package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAlreadyLinkedShortCircuits(t *testing.T) {
	e := NewEngine(DefaultConfig())
	v := e.Evaluate(
		Pulled{ExternalID: "Q-1", Amount: amt("10"), Date: day(1)},
		[]Local{
			{ID: "a", Amount: amt("10"), Date: day(1)},
			{ID: "b", ExternalID: "Q-1", Amount: amt("999"), Date: day(28)},
		},
	)
	assert.Equal(t, "b", v.MatchID)
	assert.Equal(t, 100, v.Confidence)
	assert.True(t, v.IsDuplicate)
	assert.Equal(t, "already linked", v.Reason)
	assert.Equal(t, ActionSkip, DefaultPolicy().Resolve(v))
}

func TestExactAmountDateRefAndPayeeIsSkip(t *testing.T) {
	e := NewEngine(DefaultConfig())
	p := Pulled{ExternalID: "Q-2", Amount: amt("245.10"), Date: day(1), RefNumber: "1001", Payee: "City Power"}
	v := e.Evaluate(p, []Local{{ID: "a", Amount: amt("-245.10"), Date: day(1), RefNumber: "1001", Payee: "city power"}})

	assert.Equal(t, 100, v.Confidence)
	assert.True(t, v.IsDuplicate)
	assert.Equal(t, ActionSkip, DefaultPolicy().Resolve(v))
}

func TestExactAmountDateRefWithoutPayeeIsUpdate(t *testing.T) {
	e := NewEngine(DefaultConfig())
	score, reasons := e.Score(
		Pulled{Amount: amt("50"), Date: day(2), RefNumber: "77"},
		Local{ID: "a", Amount: amt("50"), Date: day(2), RefNumber: "77"},
	)
	assert.Equal(t, 90, score)
	assert.Equal(t, []string{"amount exact", "same day", "ref 100%"}, reasons)
	assert.Equal(t, ActionUpdate, DefaultPolicy().Resolve(Verdict{MatchID: "a", Confidence: score}))
}

func TestFarAmountAndDateIsCreate(t *testing.T) {
	e := NewEngine(DefaultConfig())
	v := e.Evaluate(
		Pulled{Amount: amt("106"), Date: day(11), RefNumber: "1001"},
		[]Local{{ID: "a", Amount: amt("100"), Date: day(1), RefNumber: "1001"}},
	)
	assert.Less(t, v.Confidence, 70)
	assert.False(t, v.IsDuplicate)
	assert.Equal(t, ActionCreate, DefaultPolicy().Resolve(v))
}

func TestAmountBands(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cases := []struct {
		a, b string
		want int
	}{
		{"100", "100", 40},
		{"100", "99.5", 35},
		{"100", "99", 35},
		{"100", "98.5", 20},
		{"100", "97", 0},
		{"0", "0", 40},
		{"0", "5", 0},
	}
	for _, tc := range cases {
		got, _ := e.amountPoints(amt(tc.a), amt(tc.b))
		assert.Equal(t, tc.want, got, "%s vs %s", tc.a, tc.b)
	}
}

func TestDateBands(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cases := map[int]int{0: 30, 1: 27, 5: 15, 6: 10, 10: 10, 11: 0}
	for diff, want := range cases {
		got, _ := e.datePoints(day(1), day(1+diff))
		assert.Equal(t, want, got, "diff %d", diff)
	}
	got, _ := e.datePoints(time.Time{}, day(1))
	assert.Zero(t, got)
}

func TestDaysApartIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysApart(a, b))
	assert.Equal(t, 1, DaysApart(b, a))
}

func TestBestMatchWinsAndFirstWinsTies(t *testing.T) {
	e := NewEngine(DefaultConfig())
	p := Pulled{Amount: amt("20"), Date: day(5)}
	v := e.Evaluate(p, []Local{
		{ID: "far", Amount: amt("20"), Date: day(20)},
		{ID: "near", Amount: amt("20"), Date: day(6)},
		{ID: "near-twin", Amount: amt("20"), Date: day(4)},
	})
	require.Equal(t, "near", v.MatchID)
	assert.Equal(t, 67, v.Confidence)
}

func TestNoLocals(t *testing.T) {
	v := NewEngine(Config{}).Evaluate(Pulled{Amount: amt("1")}, nil)
	assert.Empty(t, v.MatchID)
	assert.Zero(t, v.Confidence)
	assert.Equal(t, ActionCreate, DefaultPolicy().Resolve(v))
}

func TestNewEngineFillsDefaults(t *testing.T) {
	cfg := NewEngine(Config{}).Config()
	assert.True(t, DefaultAmountTolerance.Equal(cfg.AmountTolerance))
	assert.Equal(t, DefaultDateToleranceDays, cfg.DateToleranceDays)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
}

func TestCustomThreshold(t *testing.T) {
	e := NewEngine(Config{Threshold: 95})
	v := e.Evaluate(Pulled{Amount: amt("5"), Date: day(1), RefNumber: "9"}, []Local{{ID: "a", Amount: amt("5"), Date: day(1), RefNumber: "9"}})
	assert.Equal(t, 90, v.Confidence)
	assert.False(t, v.IsDuplicate)
}
