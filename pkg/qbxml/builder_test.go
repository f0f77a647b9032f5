package qbxml

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEveryKindHasSpec(t *testing.T) {
	for _, k := range AllKinds {
		spec, ok := kindSpecs[k]
		require.True(t, ok, "missing spec for %s", k)
		assert.NotEmpty(t, spec.requestTag)
		assert.NotEmpty(t, spec.responseTag)
		assert.NotEmpty(t, k.TxnType())
	}
	assert.Len(t, kindSpecs, len(AllKinds))
}

func TestRequestFromParamsCoversEveryKind(t *testing.T) {
	txn := &TxnPayload{TxnDate: date(2024, 3, 1)}
	for _, k := range AllKinds {
		p := Params{Txn: txn, TxnID: "T-1", EditSequence: "17"}
		req, err := RequestFromParams(k, p)
		require.NoError(t, err, k)
		assert.Equal(t, k, req.Kind())
	}

	_, err := RequestFromParams(OperationKind("delete_everything"), Params{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = RequestFromParams(KindAddCheck, Params{})
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = RequestFromParams(KindModifyBill, Params{Txn: txn})
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("pull_checks")
	require.NoError(t, err)
	assert.Equal(t, KindPullChecks, k)

	_, err = ParseKind("pull_everything")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildCheckQuery(t *testing.T) {
	from := date(2024, 1, 1)
	to := date(2024, 1, 31)
	q, err := NewQuery(KindPullChecks, QueryFilter{FromTxnDate: &from, ToTxnDate: &to, MaxReturned: 50})
	require.NoError(t, err)

	out := Build(q, BuildOptions{})

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="utf-8"?>`))
	assert.Contains(t, out, `<?qbxml version="13.0"?>`)
	assert.Contains(t, out, `<QBXMLMsgsRq onError="stopOnError">`)
	assert.Contains(t, out, `<CheckQueryRq requestID="1">`)
	assert.Contains(t, out, "<MaxReturned>50</MaxReturned>")
	assert.Contains(t, out, "<FromTxnDate>2024-01-01</FromTxnDate>")
	assert.Contains(t, out, "<ToTxnDate>2024-01-31</ToTxnDate>")
	assert.Contains(t, out, "<IncludeLineItems>true</IncludeLineItems>")
	assert.NotContains(t, out, "ModifiedDateRangeFilter")
}

func TestBuildTxnQueryPrefersTxnDateRange(t *testing.T) {
	from := date(2024, 1, 1)
	q, err := NewQuery(KindPullBills, QueryFilter{FromTxnDate: &from, FromModifiedDate: &from})
	require.NoError(t, err)

	out := Build(q, BuildOptions{})
	assert.Contains(t, out, "TxnDateRangeFilter")
	assert.NotContains(t, out, "ModifiedDateRangeFilter")
}

func TestBuildQueryIncludeLineItemsFalse(t *testing.T) {
	include := false
	q, err := NewQuery(KindPullCreditCardCharges, QueryFilter{IncludeLineItems: &include, FullName: "Shell Oil"})
	require.NoError(t, err)

	out := Build(q, BuildOptions{RequestID: "7"})
	assert.Contains(t, out, `<CreditCardChargeQueryRq requestID="7">`)
	assert.Contains(t, out, "<IncludeLineItems>false</IncludeLineItems>")
	assert.Contains(t, out, "<EntityFilter>")
	assert.Contains(t, out, "<FullName>Shell Oil</FullName>")
}

func TestBuildListQuery(t *testing.T) {
	from := date(2024, 2, 1)
	q, err := NewQuery(KindPullVendors, QueryFilter{ActiveStatus: ActiveOnly, FromModifiedDate: &from, MaxReturned: 10})
	require.NoError(t, err)

	out := Build(q, BuildOptions{Version: "16.0"})
	assert.Contains(t, out, `<?qbxml version="16.0"?>`)
	assert.Contains(t, out, "<VendorQueryRq")
	assert.Contains(t, out, "<ActiveStatus>ActiveOnly</ActiveStatus>")
	assert.Contains(t, out, "<FromModifiedDate>2024-02-01</FromModifiedDate>")
	assert.NotContains(t, out, "IncludeLineItems")

	byID, err := NewQuery(KindPullAccounts, QueryFilter{ID: "80000001-1", ActiveStatus: ActiveAll})
	require.NoError(t, err)
	out = Build(byID, BuildOptions{})
	assert.Contains(t, out, "<ListID>80000001-1</ListID>")
	assert.NotContains(t, out, "ActiveStatus")
}

func TestNewQueryRejectsPushKind(t *testing.T) {
	_, err := NewQuery(KindAddCheck, QueryFilter{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildCheckAdd(t *testing.T) {
	req := &CheckAdd{TxnPayload{
		Account:   Ref{FullName: "Checking"},
		Payee:     Ref{ListID: "80000004-1"},
		TxnDate:   date(2024, 5, 6),
		RefNumber: "1042",
		Memo:      "Office rent",
		ExpenseLines: []ExpenseLine{{
			Account:  Ref{FullName: "Rent Expense"},
			Amount:   decimal.RequireFromString("-1250.5"),
			Memo:     "May",
			Customer: Ref{FullName: "Job 7"},
			Class:    Ref{FullName: "HQ"},
		}},
		ItemLines: []ItemLine{{
			Item:        Ref{FullName: "Paper"},
			Description: "A4",
			Quantity:    decimal.NewFromInt(3),
			Rate:        decimal.RequireFromString("4.1"),
			Amount:      decimal.RequireFromString("12.3"),
		}},
	}}

	out := Build(req, BuildOptions{})
	assert.Contains(t, out, "<CheckAddRq requestID=\"1\">")
	assert.Contains(t, out, "<FullName>Checking</FullName>")
	assert.Contains(t, out, "<ListID>80000004-1</ListID>")
	assert.Less(t, strings.Index(out, "<AccountRef>"), strings.Index(out, "<PayeeEntityRef>"))
	assert.Contains(t, out, "<RefNumber>1042</RefNumber>")
	assert.Contains(t, out, "<TxnDate>2024-05-06</TxnDate>")
	assert.Contains(t, out, "<Amount>1250.50</Amount>")
	assert.Contains(t, out, "<ExpenseLineAdd>")
	assert.Contains(t, out, "<CustomerRef>")
	assert.Contains(t, out, "<ClassRef>")
	assert.Contains(t, out, "<ItemLineAdd>")
	assert.Contains(t, out, "<Quantity>3</Quantity>")
	assert.Contains(t, out, "<Cost>4.10</Cost>")
	assert.Contains(t, out, "<Amount>12.30</Amount>")
	assert.NotContains(t, out, "TxnLineID")
}

func TestBuildBillAddOrdersVendorFirst(t *testing.T) {
	due := date(2024, 6, 30)
	req := &BillAdd{TxnPayload{
		Account: Ref{FullName: "Accounts Payable"},
		Payee:   Ref{FullName: "Acme"},
		TxnDate: date(2024, 6, 1),
		DueDate: &due,
		ExpenseLines: []ExpenseLine{{
			Account: Ref{FullName: "Supplies"},
			Amount:  decimal.NewFromInt(99),
		}},
	}}

	out := Build(req, BuildOptions{})
	vendor := strings.Index(out, "<VendorRef>")
	ap := strings.Index(out, "<APAccountRef>")
	require.Positive(t, vendor)
	assert.Less(t, vendor, ap)
	assert.Contains(t, out, "<DueDate>2024-06-30</DueDate>")
	assert.Contains(t, out, "<Amount>99.00</Amount>")
}

func TestBuildModCarriesEditSequenceAndLineIDs(t *testing.T) {
	req := &CheckMod{
		TxnID:        "1A2B-123",
		EditSequence: "1700000000",
		TxnPayload: TxnPayload{
			TxnDate: date(2024, 5, 6),
			ExpenseLines: []ExpenseLine{
				{TxnLineID: "5-1", Account: Ref{FullName: "Rent"}, Amount: decimal.NewFromInt(10)},
				{Account: Ref{FullName: "Fees"}, Amount: decimal.NewFromInt(2)},
			},
		},
	}

	out := Build(req, BuildOptions{})
	assert.Contains(t, out, "<CheckModRq")
	assert.Contains(t, out, "<TxnID>1A2B-123</TxnID>")
	assert.Contains(t, out, "<EditSequence>1700000000</EditSequence>")
	assert.Contains(t, out, "<ExpenseLineMod>")
	assert.Contains(t, out, "<TxnLineID>5-1</TxnLineID>")
	assert.Contains(t, out, "<TxnLineID>-1</TxnLineID>")
}

func TestBuildEscapesFreeText(t *testing.T) {
	req := &CreditCardChargeAdd{TxnPayload{
		Payee:   Ref{FullName: `Smith & "Sons" <Ltd> 'Co'`},
		TxnDate: date(2024, 1, 2),
		Memo:    "a<b & c>d",
	}}
	out := Build(req, BuildOptions{})
	assert.Contains(t, out, "<FullName>Smith &amp; &quot;Sons&quot; &lt;Ltd&gt; &apos;Co&apos;</FullName>")
	assert.Contains(t, out, "<Memo>a&lt;b &amp; c&gt;d</Memo>")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "12.00", FormatAmount(decimal.NewFromInt(-12)))
	assert.Equal(t, "0.10", FormatAmount(decimal.RequireFromString("0.1")))
	assert.Equal(t, "3.46", FormatAmount(decimal.RequireFromString("3.455")))
	assert.Equal(t, "2024-12-09", FormatDate(date(2024, 12, 9)))

	long := strings.Repeat("é", MaxMemoLength+10)
	assert.Equal(t, MaxMemoLength, len([]rune(TruncateMemo(long))))
	assert.Equal(t, "short", TruncateMemo("short"))
}
