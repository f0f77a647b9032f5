package qbxml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

type rawRef struct {
	ListID   string
	FullName string
}

func (r rawRef) ref() Ref {
	return Ref{ListID: strings.TrimSpace(r.ListID), FullName: strings.TrimSpace(r.FullName)}
}

type rawExpenseLine struct {
	TxnLineID   string
	AccountRef  rawRef
	Amount      string
	Memo        string
	CustomerRef rawRef
	ClassRef    rawRef
}

type rawItemLine struct {
	TxnLineID   string
	ItemRef     rawRef
	Desc        string
	Quantity    string
	Cost        string
	Amount      string
	CustomerRef rawRef
	ClassRef    rawRef
}

type rawVendor struct {
	ListID       string
	EditSequence string
	TimeModified string
	Name         string
	IsActive     string
	CompanyName  string
	Phone        string
	Email        string
	Balance      string
}

type rawCustomer struct {
	ListID       string
	EditSequence string
	TimeModified string
	Name         string
	FullName     string
	IsActive     string
	CompanyName  string
	Phone        string
	Email        string
	Balance      string
}

type rawAccount struct {
	ListID        string
	EditSequence  string
	TimeModified  string
	Name          string
	FullName      string
	IsActive      string
	AccountType   string
	AccountNumber string
	Balance       string
}

type rawTxn struct {
	TxnID          string
	EditSequence   string
	TxnNumber      string
	TimeModified   string
	AccountRef     rawRef
	PayeeEntityRef rawRef
	VendorRef      rawRef
	APAccountRef   rawRef
	RefNumber      string
	TxnDate        string
	DueDate        string
	Amount         string
	AmountDue      string
	Memo           string
	IsPaid         string
	ExpenseLines   []rawExpenseLine `xml:"ExpenseLineRet"`
	ItemLines      []rawItemLine    `xml:"ItemLineRet"`
}

type rawBlock struct {
	Vendors   []rawVendor   `xml:"VendorRet"`
	Customers []rawCustomer `xml:"CustomerRet"`
	Accounts  []rawAccount  `xml:"AccountRet"`
	Checks    []rawTxn      `xml:"CheckRet"`
	Bills     []rawTxn      `xml:"BillRet"`
	Charges   []rawTxn      `xml:"CreditCardChargeRet"`
}

// Parse decodes the response block for kind out of a raw payload. Status
// codes 0 and 1 are success; anything else is returned as a *StatusError
// alongside the partially filled Response. Payloads that cannot be read at all
// yield a *StatusError with CodeParseError and a nil Response.
func Parse(kind OperationKind, raw string) (*Response, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, parseFailure("unknown operation kind %q", kind)
	}
	doc := Normalize(raw)
	if doc == "" {
		return nil, parseFailure("empty response for %s", spec.responseTag)
	}

	dec := newDecoder(doc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, parseFailure("response block %s not found", spec.responseTag)
		}
		if err != nil {
			return nil, parseFailure("malformed response: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, spec.responseTag) {
			continue
		}

		resp := &Response{Kind: kind}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "statusCode":
				resp.StatusCode = strings.TrimSpace(attr.Value)
			case "statusSeverity":
				resp.StatusSeverity = attr.Value
			case "statusMessage":
				resp.StatusMessage = attr.Value
			}
		}

		var block rawBlock
		if err := dec.DecodeElement(&block, &start); err != nil {
			return nil, parseFailure("malformed %s: %v", spec.responseTag, err)
		}

		if resp.StatusCode != "0" && resp.StatusCode != "1" {
			return resp, &StatusError{
				Code:     resp.StatusCode,
				Severity: resp.StatusSeverity,
				Message:  resp.StatusMessage,
			}
		}
		collect(spec.entity, &block, resp)
		return resp, nil
	}
}

func newDecoder(doc string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	// The document is already a decoded Go string; a stale encoding label in
	// its declaration must not trigger a second decode.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}

func collect(entity entityKind, block *rawBlock, resp *Response) {
	switch entity {
	case entityVendor:
		for _, v := range block.Vendors {
			resp.Vendors = append(resp.Vendors, Vendor{
				ListID:       v.ListID,
				EditSequence: v.EditSequence,
				Name:         v.Name,
				IsActive:     parseBool(v.IsActive),
				CompanyName:  v.CompanyName,
				Phone:        v.Phone,
				Email:        v.Email,
				Balance:      parseAmount(v.Balance),
				TimeModified: parseDate(v.TimeModified),
			})
		}
	case entityCustomer:
		for _, c := range block.Customers {
			resp.Customers = append(resp.Customers, Customer{
				ListID:       c.ListID,
				EditSequence: c.EditSequence,
				Name:         c.Name,
				FullName:     c.FullName,
				IsActive:     parseBool(c.IsActive),
				CompanyName:  c.CompanyName,
				Phone:        c.Phone,
				Email:        c.Email,
				Balance:      parseAmount(c.Balance),
				TimeModified: parseDate(c.TimeModified),
			})
		}
	case entityAccount:
		for _, a := range block.Accounts {
			resp.Accounts = append(resp.Accounts, Account{
				ListID:        a.ListID,
				EditSequence:  a.EditSequence,
				Name:          a.Name,
				FullName:      a.FullName,
				IsActive:      parseBool(a.IsActive),
				AccountType:   a.AccountType,
				AccountNumber: a.AccountNumber,
				Balance:       parseAmount(a.Balance),
				TimeModified:  parseDate(a.TimeModified),
			})
		}
	case entityCheck:
		for _, t := range block.Checks {
			resp.Checks = append(resp.Checks, Check{
				TxnID:        t.TxnID,
				EditSequence: t.EditSequence,
				TxnNumber:    t.TxnNumber,
				TimeModified: parseDate(t.TimeModified),
				Account:      t.AccountRef.ref(),
				Payee:        t.PayeeEntityRef.ref(),
				RefNumber:    t.RefNumber,
				TxnDate:      parseDate(t.TxnDate),
				Amount:       parseAmount(t.Amount),
				Memo:         t.Memo,
				ExpenseLines: expenseLines(t.ExpenseLines),
				ItemLines:    itemLines(t.ItemLines),
			})
		}
	case entityBill:
		for _, t := range block.Bills {
			resp.Bills = append(resp.Bills, Bill{
				TxnID:        t.TxnID,
				EditSequence: t.EditSequence,
				TxnNumber:    t.TxnNumber,
				TimeModified: parseDate(t.TimeModified),
				Vendor:       t.VendorRef.ref(),
				APAccount:    t.APAccountRef.ref(),
				TxnDate:      parseDate(t.TxnDate),
				DueDate:      parseDate(t.DueDate),
				AmountDue:    parseAmount(t.AmountDue),
				RefNumber:    t.RefNumber,
				Memo:         t.Memo,
				IsPaid:       parseBool(t.IsPaid),
				ExpenseLines: expenseLines(t.ExpenseLines),
				ItemLines:    itemLines(t.ItemLines),
			})
		}
	case entityCreditCardCharge:
		for _, t := range block.Charges {
			resp.CreditCardCharges = append(resp.CreditCardCharges, CreditCardCharge{
				TxnID:        t.TxnID,
				EditSequence: t.EditSequence,
				TxnNumber:    t.TxnNumber,
				TimeModified: parseDate(t.TimeModified),
				Account:      t.AccountRef.ref(),
				Payee:        t.PayeeEntityRef.ref(),
				TxnDate:      parseDate(t.TxnDate),
				Amount:       parseAmount(t.Amount),
				RefNumber:    t.RefNumber,
				Memo:         t.Memo,
				ExpenseLines: expenseLines(t.ExpenseLines),
				ItemLines:    itemLines(t.ItemLines),
			})
		}
	}
}

func expenseLines(raw []rawExpenseLine) []ExpenseLine {
	if len(raw) == 0 {
		return nil
	}
	out := make([]ExpenseLine, 0, len(raw))
	for _, l := range raw {
		out = append(out, ExpenseLine{
			TxnLineID: l.TxnLineID,
			Account:   l.AccountRef.ref(),
			Amount:    parseAmount(l.Amount),
			Memo:      l.Memo,
			Customer:  l.CustomerRef.ref(),
			Class:     l.ClassRef.ref(),
		})
	}
	return out
}

func itemLines(raw []rawItemLine) []ItemLine {
	if len(raw) == 0 {
		return nil
	}
	out := make([]ItemLine, 0, len(raw))
	for _, l := range raw {
		out = append(out, ItemLine{
			TxnLineID:   l.TxnLineID,
			Item:        l.ItemRef.ref(),
			Description: l.Desc,
			Quantity:    parseAmount(l.Quantity),
			Rate:        parseAmount(l.Cost),
			Amount:      parseAmount(l.Amount),
			Customer:    l.CustomerRef.ref(),
			Class:       l.ClassRef.ref(),
		})
	}
	return out
}
