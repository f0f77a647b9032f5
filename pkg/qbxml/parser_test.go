package qbxml

import (
	"errors"
	"html"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkQueryResponse = `<?xml version="1.0" ?>
<QBXML>
<QBXMLMsgsRs>
<CheckQueryRs requestID="1" statusCode="0" statusSeverity="Info" statusMessage="Status OK">
<CheckRet>
<TxnID>12A-1700000000</TxnID>
<TimeCreated>2024-03-01T10:00:00-05:00</TimeCreated>
<TimeModified>2024-03-02T10:00:00-05:00</TimeModified>
<EditSequence>1700000001</EditSequence>
<TxnNumber>55</TxnNumber>
<AccountRef><ListID>80000001-1</ListID><FullName>Checking</FullName></AccountRef>
<PayeeEntityRef><ListID>80000009-1</ListID><FullName>City Power</FullName></PayeeEntityRef>
<RefNumber>1001</RefNumber>
<TxnDate>2024-03-01</TxnDate>
<Amount>245.10</Amount>
<Memo>March power</Memo>
<Address><Addr1>ignored</Addr1></Address>
<IsToBePrinted>false</IsToBePrinted>
<ExpenseLineRet>
<TxnLineID>1B-1</TxnLineID>
<AccountRef><FullName>Utilities</FullName></AccountRef>
<Amount>200.00</Amount>
<Memo>Power</Memo>
<CustomerRef><FullName>Job 7</FullName></CustomerRef>
<ClassRef><FullName>HQ</FullName></ClassRef>
<BillableStatus>NotBillable</BillableStatus>
</ExpenseLineRet>
<ItemLineRet>
<TxnLineID>1C-1</TxnLineID>
<ItemRef><FullName>Meter</FullName></ItemRef>
<Desc>Meter rental</Desc>
<Quantity>1</Quantity>
<Cost>45.10</Cost>
<Amount>45.10</Amount>
</ItemLineRet>
</CheckRet>
</CheckQueryRs>
</QBXMLMsgsRs>
</QBXML>`

func TestParseCheckQuery(t *testing.T) {
	resp, err := Parse(KindPullChecks, checkQueryResponse)
	require.NoError(t, err)
	require.Len(t, resp.Checks, 1)

	c := resp.Checks[0]
	assert.Equal(t, "0", resp.StatusCode)
	assert.Equal(t, "Status OK", resp.StatusMessage)
	assert.Equal(t, "12A-1700000000", c.TxnID)
	assert.Equal(t, "1700000001", c.EditSequence)
	assert.Equal(t, "55", c.TxnNumber)
	assert.Equal(t, Ref{ListID: "80000001-1", FullName: "Checking"}, c.Account)
	assert.Equal(t, "City Power", c.Payee.Name())
	assert.Equal(t, "1001", c.RefNumber)
	assert.Equal(t, date(2024, 3, 1), c.TxnDate)
	assert.True(t, decimal.RequireFromString("245.10").Equal(c.Amount))
	assert.Equal(t, "March power", c.Memo)

	require.Len(t, c.ExpenseLines, 1)
	assert.Equal(t, "Utilities", c.ExpenseLines[0].Account.FullName)
	assert.True(t, decimal.NewFromInt(200).Equal(c.ExpenseLines[0].Amount))
	assert.Equal(t, "Job 7", c.ExpenseLines[0].Customer.FullName)
	assert.Equal(t, "HQ", c.ExpenseLines[0].Class.FullName)

	require.Len(t, c.ItemLines, 1)
	assert.Equal(t, "Meter rental", c.ItemLines[0].Description)
	assert.True(t, decimal.RequireFromString("45.1").Equal(c.ItemLines[0].Rate))

	txns := resp.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, TxnTypeCheck, txns[0].Type)
	assert.Equal(t, "City Power", txns[0].Payee)
}

func TestParseNoDataIsSuccess(t *testing.T) {
	raw := `<QBXML><QBXMLMsgsRs><BillQueryRs requestID="1" statusCode="1" statusSeverity="Info" statusMessage="A query request did not find a matching object in QuickBooks" /></QBXMLMsgsRs></QBXML>`
	resp, err := Parse(KindPullBills, raw)
	require.NoError(t, err)
	assert.True(t, resp.NoData())
	assert.Empty(t, resp.Bills)
}

func TestParseStatusFailure(t *testing.T) {
	raw := `<QBXML><QBXMLMsgsRs><CheckAddRs requestID="1" statusCode="3120" statusSeverity="Error" statusMessage="Object &quot;80000004-1&quot; specified in the request cannot be found." /></QBXMLMsgsRs></QBXML>`
	resp, err := Parse(KindAddCheck, raw)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "3120", se.Code)
	assert.Equal(t, "Error", se.Severity)
	assert.Contains(t, se.Message, `"80000004-1"`)
	require.NotNil(t, resp)
	assert.Equal(t, "3120", resp.StatusCode)
}

func TestParseMalformedIsParseError(t *testing.T) {
	cases := map[string]string{
		"empty":         "   ",
		"missing block": `<QBXML><QBXMLMsgsRs><VendorQueryRs statusCode="0"/></QBXMLMsgsRs></QBXML>`,
		"truncated":     `<QBXML><QBXMLMsgsRs><CheckQueryRs statusCode="0"><CheckRet><TxnID>1`,
		"not xml":       "hello world",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := Parse(KindPullChecks, raw)
			assert.Nil(t, resp)
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, CodeParseError, se.Code)
		})
	}
}

func TestParseToleratesNamespacePrefixes(t *testing.T) {
	raw := `<qb:QBXML xmlns:qb="urn:qb"><qb:QBXMLMsgsRs><qb:VendorQueryRs statusCode="0" statusMessage="OK">
<qb:VendorRet><qb:ListID>80000009-1</qb:ListID><qb:EditSequence>9</qb:EditSequence><qb:Name>City Power</qb:Name><qb:IsActive>true</qb:IsActive><qb:Balance>12.5</qb:Balance><qb:Unknown>x</qb:Unknown></qb:VendorRet>
<qb:VendorRet><qb:ListID>8000000A-1</qb:ListID><qb:Name>Gas Co</qb:Name><qb:IsActive>false</qb:IsActive></qb:VendorRet>
</qb:VendorQueryRs></qb:QBXMLMsgsRs></qb:QBXML>`

	resp, err := Parse(KindPullVendors, raw)
	require.NoError(t, err)
	require.Len(t, resp.Vendors, 2)
	assert.Equal(t, "City Power", resp.Vendors[0].Name)
	assert.True(t, resp.Vendors[0].IsActive)
	assert.True(t, decimal.RequireFromString("12.5").Equal(resp.Vendors[0].Balance))
	assert.False(t, resp.Vendors[1].IsActive)
}

func TestParseListKinds(t *testing.T) {
	customers := `<QBXML><QBXMLMsgsRs><CustomerQueryRs statusCode="0"><CustomerRet><ListID>C1</ListID><Name>Job 7</Name><FullName>Acme:Job 7</FullName><IsActive>true</IsActive></CustomerRet></CustomerQueryRs></QBXMLMsgsRs></QBXML>`
	resp, err := Parse(KindPullCustomers, customers)
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Acme:Job 7", resp.Customers[0].FullName)

	accounts := `<QBXML><QBXMLMsgsRs><AccountQueryRs statusCode="0"><AccountRet><ListID>A1</ListID><Name>Checking</Name><FullName>Checking</FullName><AccountType>Bank</AccountType><AccountNumber>001</AccountNumber><Balance>1000.00</Balance></AccountRet></AccountQueryRs></QBXMLMsgsRs></QBXML>`
	resp, err = Parse(KindPullAccounts, accounts)
	require.NoError(t, err)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "Bank", resp.Accounts[0].AccountType)
}

func TestParseBillAndCharge(t *testing.T) {
	bills := `<QBXML><QBXMLMsgsRs><BillQueryRs statusCode="0"><BillRet><TxnID>B-1</TxnID><EditSequence>3</EditSequence><VendorRef><FullName>Acme</FullName></VendorRef><APAccountRef><FullName>Accounts Payable</FullName></APAccountRef><TxnDate>2024-04-01</TxnDate><DueDate>2024-04-30</DueDate><AmountDue>99.00</AmountDue><RefNumber>INV-9</RefNumber><IsPaid>false</IsPaid><ExpenseLineRet><AccountRef><FullName>Supplies</FullName></AccountRef><Amount>99.00</Amount></ExpenseLineRet></BillRet></BillQueryRs></QBXMLMsgsRs></QBXML>`
	resp, err := Parse(KindPullBills, bills)
	require.NoError(t, err)
	require.Len(t, resp.Bills, 1)
	b := resp.Bills[0]
	assert.Equal(t, "Acme", b.Vendor.FullName)
	assert.Equal(t, date(2024, 4, 30), b.DueDate)
	assert.True(t, decimal.NewFromInt(99).Equal(b.AmountDue))
	assert.Equal(t, TxnTypeBill, resp.Transactions()[0].Type)

	charges := `<QBXML><QBXMLMsgsRs><CreditCardChargeQueryRs statusCode="0"><CreditCardChargeRet><TxnID>CC-1</TxnID><AccountRef><FullName>Visa</FullName></AccountRef><PayeeEntityRef><FullName>Shell</FullName></PayeeEntityRef><TxnDate>2024-04-02</TxnDate><Amount>40.00</Amount></CreditCardChargeRet></CreditCardChargeQueryRs></QBXMLMsgsRs></QBXML>`
	resp, err = Parse(KindPullCreditCardCharges, charges)
	require.NoError(t, err)
	require.Len(t, resp.CreditCardCharges, 1)
	assert.Equal(t, "Visa", resp.CreditCardCharges[0].Account.FullName)
}

func TestParseCDATAAndEscapedPayloadsMatchPlain(t *testing.T) {
	plain, err := Parse(KindPullChecks, checkQueryResponse)
	require.NoError(t, err)

	cdata, err := Parse(KindPullChecks, "<![CDATA["+checkQueryResponse+"]]>")
	require.NoError(t, err)
	assert.Equal(t, plain, cdata)

	escaped := html.EscapeString(checkQueryResponse)
	fromEscaped, err := Parse(KindPullChecks, escaped)
	require.NoError(t, err)
	assert.Equal(t, plain, fromEscaped)

	both := html.EscapeString("<![CDATA[" + checkQueryResponse + "]]>")
	fromBoth, err := Parse(KindPullChecks, both)
	require.NoError(t, err)
	assert.Equal(t, plain, fromBoth)
}

func TestParseUnknownKind(t *testing.T) {
	_, err := Parse(OperationKind("nope"), checkQueryResponse)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeParseError, se.Code)
}
