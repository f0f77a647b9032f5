package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxConfidence = 100

	DefaultDateToleranceDays = 5
	DefaultThreshold         = 80
)

// DefaultAmountTolerance is the relative amount tolerance (1%).
var DefaultAmountTolerance = decimal.NewFromFloat(0.01)

// Pulled is one transaction decoded from a QuickBooks response.
type Pulled struct {
	ExternalID string
	Type       string
	Amount     decimal.Decimal
	Date       time.Time
	Payee      string
	RefNumber  string
	Memo       string
}

// Local is a transaction already known to the store.
type Local struct {
	ID         string
	ExternalID string
	Amount     decimal.Decimal
	Date       time.Time
	Payee      string
	RefNumber  string
	Memo       string
}

// Verdict is the best match found for one pulled transaction.
type Verdict struct {
	IsDuplicate bool
	// MatchID is the local transaction id of the best match, empty when no
	// local transaction scored above zero.
	MatchID           string
	MatchedExternalID string
	Confidence        int
	Reason            string
}

type Config struct {
	AmountTolerance   decimal.Decimal
	DateToleranceDays int
	Threshold         int
}

func DefaultConfig() Config {
	return Config{
		AmountTolerance:   DefaultAmountTolerance,
		DateToleranceDays: DefaultDateToleranceDays,
		Threshold:         DefaultThreshold,
	}
}

type Engine struct {
	cfg Config
}

// NewEngine fills zero config values with defaults.
func NewEngine(cfg Config) *Engine {
	if !cfg.AmountTolerance.IsPositive() {
		cfg.AmountTolerance = DefaultAmountTolerance
	}
	if cfg.DateToleranceDays <= 0 {
		cfg.DateToleranceDays = DefaultDateToleranceDays
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Evaluate scores p against every local transaction and returns the best
// match. The first local transaction wins ties.
func (e *Engine) Evaluate(p Pulled, locals []Local) Verdict {
	best := Verdict{Reason: "no local transactions"}
	for _, l := range locals {
		score, reasons := e.Score(p, l)
		if score <= best.Confidence {
			continue
		}
		best = Verdict{
			MatchID:           l.ID,
			MatchedExternalID: l.ExternalID,
			Confidence:        score,
			Reason:            strings.Join(reasons, ", "),
		}
		if score == MaxConfidence {
			break
		}
	}
	if best.MatchID == "" && len(locals) > 0 {
		best.Reason = "no similar local transaction"
	}
	best.IsDuplicate = best.Confidence >= e.cfg.Threshold
	return best
}

// Score returns the weighted confidence that l and p are the same
// transaction, with the signals that contributed to it.
func (e *Engine) Score(p Pulled, l Local) (int, []string) {
	if p.ExternalID != "" && l.ExternalID == p.ExternalID {
		return MaxConfidence, []string{"already linked"}
	}

	score := 0
	var reasons []string

	if pts, why := e.amountPoints(p.Amount, l.Amount); pts > 0 {
		score += pts
		reasons = append(reasons, why)
	}
	if pts, why := e.datePoints(p.Date, l.Date); pts > 0 {
		score += pts
		reasons = append(reasons, why)
	}

	if sim := Similarity(p.RefNumber, l.RefNumber); sim >= 90 {
		score += 20
		reasons = append(reasons, fmt.Sprintf("ref %d%%", sim))
	} else if sim >= 70 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("ref %d%%", sim))
	}

	if sim := Similarity(p.Payee, l.Payee); sim >= 80 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("payee %d%%", sim))
	} else if sim >= 50 {
		score += 5
		reasons = append(reasons, fmt.Sprintf("payee %d%%", sim))
	}

	if sim := Similarity(p.Memo, l.Memo); sim >= 70 {
		score += 5
		reasons = append(reasons, fmt.Sprintf("memo %d%%", sim))
	}

	if score > MaxConfidence {
		score = MaxConfidence
	}
	return score, reasons
}

func (e *Engine) amountPoints(a, b decimal.Decimal) (int, string) {
	a, b = a.Abs(), b.Abs()
	if a.Equal(b) {
		return 40, "amount exact"
	}
	larger := decimal.Max(a, b)
	if larger.IsZero() {
		return 0, ""
	}
	diff := a.Sub(b).Abs().Div(larger)
	switch {
	case diff.LessThanOrEqual(e.cfg.AmountTolerance):
		return 35, "amount within " + e.cfg.AmountTolerance.Shift(2).String() + "%"
	case diff.LessThanOrEqual(e.cfg.AmountTolerance.Mul(decimal.NewFromInt(2))):
		return 20, "amount within " + e.cfg.AmountTolerance.Shift(2).Mul(decimal.NewFromInt(2)).String() + "%"
	}
	return 0, ""
}

func (e *Engine) datePoints(a, b time.Time) (int, string) {
	if a.IsZero() || b.IsZero() {
		return 0, ""
	}
	d := DaysApart(a, b)
	tol := e.cfg.DateToleranceDays
	switch {
	case d == 0:
		return 30, "same day"
	case d <= tol:
		return 30 - 3*d, fmt.Sprintf("date %dd apart", d)
	case d <= 2*tol:
		return 10, fmt.Sprintf("date %dd apart", d)
	}
	return 0, ""
}

// DaysApart counts calendar days between the dates of a and b.
func DaysApart(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
