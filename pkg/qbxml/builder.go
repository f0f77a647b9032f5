package qbxml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultVersion = "13.0"
	// newLineID marks a line added through a Mod request.
	newLineID = "-1"
)

// Request is one outbound qbXML request. The unexported method keeps the set
// of implementations inside this package.
type Request interface {
	Kind() OperationKind
	writeBody(w *writer)
}

// Query is a pull request for any of the pull kinds.
type Query struct {
	kind   OperationKind
	Filter QueryFilter
}

// NewQuery builds a pull request, rejecting non-pull kinds.
func NewQuery(kind OperationKind, filter QueryFilter) (*Query, error) {
	if !kind.IsPull() {
		return nil, fmt.Errorf("%w: %s is not a pull kind", ErrUnknownKind, kind)
	}
	return &Query{kind: kind, Filter: filter}, nil
}

func (q *Query) Kind() OperationKind { return q.kind }

type CheckAdd struct{ TxnPayload }

func (r *CheckAdd) Kind() OperationKind { return KindAddCheck }

type BillAdd struct{ TxnPayload }

func (r *BillAdd) Kind() OperationKind { return KindAddBill }

type CreditCardChargeAdd struct{ TxnPayload }

func (r *CreditCardChargeAdd) Kind() OperationKind { return KindAddCreditCardCharge }

type CheckMod struct {
	TxnID        string
	EditSequence string
	TxnPayload
}

func (r *CheckMod) Kind() OperationKind { return KindModifyCheck }

type BillMod struct {
	TxnID        string
	EditSequence string
	TxnPayload
}

func (r *BillMod) Kind() OperationKind { return KindModifyBill }

// RequestFromParams turns a stored operation payload into a typed request.
func RequestFromParams(kind OperationKind, p Params) (Request, error) {
	switch kind {
	case KindPullVendors, KindPullCustomers, KindPullAccounts,
		KindPullChecks, KindPullBills, KindPullCreditCardCharges:
		var filter QueryFilter
		if p.Filter != nil {
			filter = *p.Filter
		}
		return NewQuery(kind, filter)
	case KindAddCheck:
		if p.Txn == nil {
			return nil, fmt.Errorf("%w: %s needs txn", ErrMissingParams, kind)
		}
		return &CheckAdd{*p.Txn}, nil
	case KindAddBill:
		if p.Txn == nil {
			return nil, fmt.Errorf("%w: %s needs txn", ErrMissingParams, kind)
		}
		return &BillAdd{*p.Txn}, nil
	case KindAddCreditCardCharge:
		if p.Txn == nil {
			return nil, fmt.Errorf("%w: %s needs txn", ErrMissingParams, kind)
		}
		return &CreditCardChargeAdd{*p.Txn}, nil
	case KindModifyCheck:
		if p.Txn == nil || p.TxnID == "" || p.EditSequence == "" {
			return nil, fmt.Errorf("%w: %s needs txn, txn id and edit sequence", ErrMissingParams, kind)
		}
		return &CheckMod{TxnID: p.TxnID, EditSequence: p.EditSequence, TxnPayload: *p.Txn}, nil
	case KindModifyBill:
		if p.Txn == nil || p.TxnID == "" || p.EditSequence == "" {
			return nil, fmt.Errorf("%w: %s needs txn, txn id and edit sequence", ErrMissingParams, kind)
		}
		return &BillMod{TxnID: p.TxnID, EditSequence: p.EditSequence, TxnPayload: *p.Txn}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// BuildOptions tunes the document wrapper.
type BuildOptions struct {
	Version   string
	RequestID string
	// OnError is the QBXMLMsgsRq onError attribute; defaults to stopOnError.
	OnError string
}

// Build renders a complete qbXML document for req.
func Build(req Request, opts BuildOptions) string {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.RequestID == "" {
		opts.RequestID = "1"
	}
	if opts.OnError == "" {
		opts.OnError = "stopOnError"
	}

	w := &writer{}
	w.b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	w.b.WriteString(`<?qbxml version="` + Escape(opts.Version) + `"?>` + "\n")
	w.open("QBXML")
	w.open("QBXMLMsgsRq", "onError", opts.OnError)
	tag := req.Kind().RequestTag()
	w.open(tag, "requestID", opts.RequestID)
	req.writeBody(w)
	w.close(tag)
	w.close("QBXMLMsgsRq")
	w.close("QBXML")
	return w.b.String()
}

func (q *Query) writeBody(w *writer) {
	f := q.Filter
	if q.kind.IsTransaction() {
		if f.ID != "" {
			w.elem("TxnID", f.ID)
			w.elem("IncludeLineItems", boolString(f.includeLineItems()))
			return
		}
		if f.MaxReturned > 0 {
			w.elem("MaxReturned", strconv.Itoa(f.MaxReturned))
		}
		// qbXML accepts one date filter; the transaction-date range wins.
		switch {
		case f.FromTxnDate != nil || f.ToTxnDate != nil:
			w.open("TxnDateRangeFilter")
			w.date("FromTxnDate", f.FromTxnDate)
			w.date("ToTxnDate", f.ToTxnDate)
			w.close("TxnDateRangeFilter")
		case f.FromModifiedDate != nil || f.ToModifiedDate != nil:
			w.open("ModifiedDateRangeFilter")
			w.date("FromModifiedDate", f.FromModifiedDate)
			w.date("ToModifiedDate", f.ToModifiedDate)
			w.close("ModifiedDateRangeFilter")
		}
		if f.FullName != "" {
			w.open("EntityFilter")
			w.elem("FullName", f.FullName)
			w.close("EntityFilter")
		}
		w.elem("IncludeLineItems", boolString(f.includeLineItems()))
		return
	}

	switch {
	case f.ID != "":
		w.elem("ListID", f.ID)
		return
	case f.FullName != "":
		w.elem("FullName", f.FullName)
		return
	}
	if f.MaxReturned > 0 {
		w.elem("MaxReturned", strconv.Itoa(f.MaxReturned))
	}
	w.elem("ActiveStatus", string(f.ActiveStatus))
	w.date("FromModifiedDate", f.FromModifiedDate)
	w.date("ToModifiedDate", f.ToModifiedDate)
}

func (r *CheckAdd) writeBody(w *writer) {
	w.open("CheckAdd")
	w.ref("AccountRef", r.Account)
	w.ref("PayeeEntityRef", r.Payee)
	w.elem("RefNumber", r.RefNumber)
	w.elem("TxnDate", FormatDate(r.TxnDate))
	w.elem("Memo", r.Memo)
	w.lines("Add", r.ExpenseLines, r.ItemLines)
	w.close("CheckAdd")
}

func (r *BillAdd) writeBody(w *writer) {
	w.open("BillAdd")
	w.ref("VendorRef", r.Payee)
	w.ref("APAccountRef", r.Account)
	w.elem("TxnDate", FormatDate(r.TxnDate))
	w.date("DueDate", r.DueDate)
	w.elem("RefNumber", r.RefNumber)
	w.elem("Memo", r.Memo)
	w.lines("Add", r.ExpenseLines, r.ItemLines)
	w.close("BillAdd")
}

func (r *CreditCardChargeAdd) writeBody(w *writer) {
	w.open("CreditCardChargeAdd")
	w.ref("AccountRef", r.Account)
	w.ref("PayeeEntityRef", r.Payee)
	w.elem("TxnDate", FormatDate(r.TxnDate))
	w.elem("RefNumber", r.RefNumber)
	w.elem("Memo", r.Memo)
	w.lines("Add", r.ExpenseLines, r.ItemLines)
	w.close("CreditCardChargeAdd")
}

func (r *CheckMod) writeBody(w *writer) {
	w.open("CheckMod")
	w.elem("TxnID", r.TxnID)
	w.elem("EditSequence", r.EditSequence)
	w.ref("AccountRef", r.Account)
	w.ref("PayeeEntityRef", r.Payee)
	w.elem("RefNumber", r.RefNumber)
	w.elem("TxnDate", FormatDate(r.TxnDate))
	w.elem("Memo", r.Memo)
	w.lines("Mod", r.ExpenseLines, r.ItemLines)
	w.close("CheckMod")
}

func (r *BillMod) writeBody(w *writer) {
	w.open("BillMod")
	w.elem("TxnID", r.TxnID)
	w.elem("EditSequence", r.EditSequence)
	w.ref("VendorRef", r.Payee)
	w.ref("APAccountRef", r.Account)
	w.elem("TxnDate", FormatDate(r.TxnDate))
	w.date("DueDate", r.DueDate)
	w.elem("RefNumber", r.RefNumber)
	w.elem("Memo", r.Memo)
	w.lines("Mod", r.ExpenseLines, r.ItemLines)
	w.close("BillMod")
}

type writer struct {
	b     strings.Builder
	depth int
}

func (w *writer) indent() {
	w.b.WriteString(strings.Repeat("  ", w.depth))
}

func (w *writer) open(tag string, attrs ...string) {
	w.indent()
	w.b.WriteString("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.b.WriteString(" " + attrs[i] + `="` + Escape(attrs[i+1]) + `"`)
	}
	w.b.WriteString(">\n")
	w.depth++
}

func (w *writer) close(tag string) {
	w.depth--
	w.indent()
	w.b.WriteString("</" + tag + ">\n")
}

// elem writes <tag>value</tag>, skipping empty values.
func (w *writer) elem(tag, value string) {
	if value == "" {
		return
	}
	w.indent()
	w.b.WriteString("<" + tag + ">" + Escape(value) + "</" + tag + ">\n")
}

func (w *writer) date(tag string, t *time.Time) {
	if t == nil || t.IsZero() {
		return
	}
	w.elem(tag, FormatDate(*t))
}

func (w *writer) amount(tag string, d decimal.Decimal) {
	w.elem(tag, FormatAmount(d))
}

func (w *writer) ref(tag string, r Ref) {
	if r.IsZero() {
		return
	}
	w.open(tag)
	if r.ListID != "" {
		w.elem("ListID", r.ListID)
	} else {
		w.elem("FullName", r.FullName)
	}
	w.close(tag)
}

// lines writes ExpenseLine<suffix> and ItemLine<suffix> blocks. Mod lines
// always carry a TxnLineID; new lines use -1.
func (w *writer) lines(suffix string, expenses []ExpenseLine, items []ItemLine) {
	for _, l := range expenses {
		tag := "ExpenseLine" + suffix
		w.open(tag)
		if suffix == "Mod" {
			w.elem("TxnLineID", lineID(l.TxnLineID))
		}
		w.ref("AccountRef", l.Account)
		w.amount("Amount", l.Amount)
		w.elem("Memo", l.Memo)
		w.ref("CustomerRef", l.Customer)
		w.ref("ClassRef", l.Class)
		w.close(tag)
	}
	for _, l := range items {
		tag := "ItemLine" + suffix
		w.open(tag)
		if suffix == "Mod" {
			w.elem("TxnLineID", lineID(l.TxnLineID))
		}
		w.ref("ItemRef", l.Item)
		w.elem("Desc", l.Description)
		if !l.Quantity.IsZero() {
			w.elem("Quantity", l.Quantity.String())
		}
		if !l.Rate.IsZero() {
			w.amount("Cost", l.Rate)
		}
		w.amount("Amount", l.Amount)
		w.ref("CustomerRef", l.Customer)
		w.ref("ClassRef", l.Class)
		w.close(tag)
	}
}

func lineID(id string) string {
	if id == "" {
		return newLineID
	}
	return id
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
