package qbxml

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoAdd fakes the agent: it answers an add request with the same fields
// plus a QuickBooks-assigned id and edit sequence.
func echoAdd(t *testing.T, doc, body, ret string) string {
	t.Helper()
	open := "<" + body + ">"
	start := strings.Index(doc, open)
	end := strings.Index(doc, "</"+body+">")
	require.Positive(t, start)
	require.Greater(t, end, start)

	inner := doc[start+len(open) : end]
	inner = strings.ReplaceAll(inner, "ExpenseLineAdd", "ExpenseLineRet")
	inner = strings.ReplaceAll(inner, "ItemLineAdd", "ItemLineRet")

	tag := strings.TrimSuffix(body, "Add")
	return `<?xml version="1.0" ?><QBXML><QBXMLMsgsRs>` +
		`<` + tag + `AddRs requestID="1" statusCode="0" statusSeverity="Info" statusMessage="Status OK">` +
		`<` + ret + `><TxnID>99-1700000000</TxnID><EditSequence>1700000000</EditSequence>` +
		inner +
		`</` + ret + `></` + tag + `AddRs></QBXMLMsgsRs></QBXML>`
}

func TestCheckAddRoundTrip(t *testing.T) {
	payload := TxnPayload{
		Account:   Ref{FullName: "Checking"},
		Payee:     Ref{FullName: "City Power"},
		TxnDate:   date(2024, 3, 1),
		RefNumber: "1001",
		Memo:      `Power & light <"March"> 'bill'`,
		ExpenseLines: []ExpenseLine{{
			Account: Ref{FullName: "Utilities"},
			Amount:  decimal.RequireFromString("245.10"),
			Memo:    "a & b",
		}},
	}

	doc := Build(&CheckAdd{payload}, BuildOptions{})
	resp, err := Parse(KindAddCheck, echoAdd(t, doc, "CheckAdd", "CheckRet"))
	require.NoError(t, err)
	require.Len(t, resp.Checks, 1)

	got := resp.Checks[0]
	assert.Equal(t, "99-1700000000", got.TxnID)
	assert.Equal(t, "1700000000", got.EditSequence)
	assert.Equal(t, payload.Account, got.Account)
	assert.Equal(t, payload.Payee, got.Payee)
	assert.Equal(t, payload.RefNumber, got.RefNumber)
	assert.Equal(t, payload.TxnDate, got.TxnDate)
	assert.Equal(t, payload.Memo, got.Memo)
	require.Len(t, got.ExpenseLines, 1)
	assert.Equal(t, "Utilities", got.ExpenseLines[0].Account.FullName)
	assert.True(t, payload.ExpenseLines[0].Amount.Equal(got.ExpenseLines[0].Amount))
	assert.Equal(t, "a & b", got.ExpenseLines[0].Memo)
}

func TestBillAddRoundTrip(t *testing.T) {
	due := date(2024, 6, 30)
	payload := TxnPayload{
		Account:   Ref{FullName: "Accounts Payable"},
		Payee:     Ref{ListID: "80000004-1"},
		TxnDate:   date(2024, 6, 1),
		DueDate:   &due,
		RefNumber: "INV-9",
		ItemLines: []ItemLine{{
			Item:        Ref{FullName: "Paper"},
			Description: "A4 & A3",
			Quantity:    decimal.NewFromInt(3),
			Rate:        decimal.RequireFromString("4.10"),
			Amount:      decimal.RequireFromString("12.30"),
		}},
	}

	doc := Build(&BillAdd{payload}, BuildOptions{})
	resp, err := Parse(KindAddBill, echoAdd(t, doc, "BillAdd", "BillRet"))
	require.NoError(t, err)
	require.Len(t, resp.Bills, 1)

	got := resp.Bills[0]
	assert.Equal(t, payload.Payee, got.Vendor)
	assert.Equal(t, payload.Account, got.APAccount)
	assert.Equal(t, due, got.DueDate)
	require.Len(t, got.ItemLines, 1)
	assert.Equal(t, "A4 & A3", got.ItemLines[0].Description)
	assert.True(t, decimal.NewFromInt(3).Equal(got.ItemLines[0].Quantity))
	assert.True(t, payload.ItemLines[0].Rate.Equal(got.ItemLines[0].Rate))
}

func TestEscapeRoundTripsThroughParser(t *testing.T) {
	for _, memo := range []string{"&", "<", ">", `"`, "'", `&<>"'`, "&amp; already"} {
		raw := `<QBXML><QBXMLMsgsRs><CheckQueryRs statusCode="0"><CheckRet><TxnID>1</TxnID><Memo>` +
			Escape(memo) + `</Memo></CheckRet></CheckQueryRs></QBXMLMsgsRs></QBXML>`
		resp, err := Parse(KindPullChecks, raw)
		require.NoError(t, err, memo)
		require.Len(t, resp.Checks, 1)
		assert.Equal(t, memo, resp.Checks[0].Memo)
	}
}
