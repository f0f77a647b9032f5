package qbxml

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownKind   = errors.New("unknown operation kind")
	ErrMissingParams = errors.New("missing operation params")
)

// CodeParseError is the status code reported for payloads that could not be
// read at all.
const CodeParseError = "ParseError"

// StatusError is a structured failure: either a non-success qbXML status or
// a payload that could not be parsed.
type StatusError struct {
	Code     string
	Severity string
	Message  string
}

func (e *StatusError) Error() string {
	if e.Severity != "" {
		return fmt.Sprintf("qbxml status %s (%s): %s", e.Code, e.Severity, e.Message)
	}
	return fmt.Sprintf("qbxml status %s: %s", e.Code, e.Message)
}

func parseFailure(format string, args ...any) *StatusError {
	return &StatusError{Code: CodeParseError, Message: fmt.Sprintf(format, args...)}
}

// Ref points at a list entity, by ListID when known, otherwise by FullName.
type Ref struct {
	ListID   string `json:"list_id,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

func (r Ref) IsZero() bool {
	return r.ListID == "" && r.FullName == ""
}

// Name returns the most human-readable identifier available.
func (r Ref) Name() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.ListID
}

type ExpenseLine struct {
	TxnLineID string          `json:"txn_line_id,omitempty"`
	Account   Ref             `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
	Customer  Ref             `json:"customer,omitempty"`
	Class     Ref             `json:"class,omitempty"`
}

type ItemLine struct {
	TxnLineID   string          `json:"txn_line_id,omitempty"`
	Item        Ref             `json:"item"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Customer    Ref             `json:"customer,omitempty"`
	Class       Ref             `json:"class,omitempty"`
}

// ActiveStatus filters list queries.
type ActiveStatus string

const (
	ActiveOnly   ActiveStatus = "ActiveOnly"
	InactiveOnly ActiveStatus = "InactiveOnly"
	ActiveAll    ActiveStatus = "All"
)

// QueryFilter carries the optional filters of a pull request.
type QueryFilter struct {
	ID               string       `json:"id,omitempty"`
	FullName         string       `json:"full_name,omitempty"`
	ActiveStatus     ActiveStatus `json:"active_status,omitempty"`
	FromTxnDate      *time.Time   `json:"from_txn_date,omitempty"`
	ToTxnDate        *time.Time   `json:"to_txn_date,omitempty"`
	FromModifiedDate *time.Time   `json:"from_modified_date,omitempty"`
	ToModifiedDate   *time.Time   `json:"to_modified_date,omitempty"`
	// IncludeLineItems defaults to true when nil.
	IncludeLineItems *bool `json:"include_line_items,omitempty"`
	MaxReturned      int   `json:"max_returned,omitempty"`
}

func (f QueryFilter) includeLineItems() bool {
	return f.IncludeLineItems == nil || *f.IncludeLineItems
}

// TxnPayload is the body of an add or modify request. Account is the bank or
// card account for checks and charges and the A/P account for bills; Payee is
// the vendor for bills.
type TxnPayload struct {
	Account      Ref           `json:"account"`
	Payee        Ref           `json:"payee"`
	TxnDate      time.Time     `json:"txn_date"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	RefNumber    string        `json:"ref_number,omitempty"`
	Memo         string        `json:"memo,omitempty"`
	ExpenseLines []ExpenseLine `json:"expense_lines,omitempty"`
	ItemLines    []ItemLine    `json:"item_lines,omitempty"`
}

// Params is the free-form payload stored with a queued operation.
type Params struct {
	Filter             *QueryFilter `json:"filter,omitempty"`
	Txn                *TxnPayload  `json:"txn,omitempty"`
	TxnID              string       `json:"txn_id,omitempty"`
	EditSequence       string       `json:"edit_sequence,omitempty"`
	LocalTransactionID string       `json:"local_transaction_id,omitempty"`
}

type Vendor struct {
	ListID       string
	EditSequence string
	Name         string
	IsActive     bool
	CompanyName  string
	Phone        string
	Email        string
	Balance      decimal.Decimal
	TimeModified time.Time
}

type Customer struct {
	ListID       string
	EditSequence string
	Name         string
	FullName     string
	IsActive     bool
	CompanyName  string
	Phone        string
	Email        string
	Balance      decimal.Decimal
	TimeModified time.Time
}

type Account struct {
	ListID        string
	EditSequence  string
	Name          string
	FullName      string
	IsActive      bool
	AccountType   string
	AccountNumber string
	Balance       decimal.Decimal
	TimeModified  time.Time
}

type Check struct {
	TxnID        string
	EditSequence string
	TxnNumber    string
	TimeModified time.Time
	Account      Ref
	Payee        Ref
	RefNumber    string
	TxnDate      time.Time
	Amount       decimal.Decimal
	Memo         string
	ExpenseLines []ExpenseLine
	ItemLines    []ItemLine
}

type Bill struct {
	TxnID        string
	EditSequence string
	TxnNumber    string
	TimeModified time.Time
	Vendor       Ref
	APAccount    Ref
	TxnDate      time.Time
	DueDate      time.Time
	AmountDue    decimal.Decimal
	RefNumber    string
	Memo         string
	IsPaid       bool
	ExpenseLines []ExpenseLine
	ItemLines    []ItemLine
}

type CreditCardCharge struct {
	TxnID        string
	EditSequence string
	TxnNumber    string
	TimeModified time.Time
	Account      Ref
	Payee        Ref
	TxnDate      time.Time
	Amount       decimal.Decimal
	RefNumber    string
	Memo         string
	ExpenseLines []ExpenseLine
	ItemLines    []ItemLine
}

// Response is a decoded response block.
type Response struct {
	Kind              OperationKind
	StatusCode        string
	StatusSeverity    string
	StatusMessage     string
	Vendors           []Vendor
	Customers         []Customer
	Accounts          []Account
	Checks            []Check
	Bills             []Bill
	CreditCardCharges []CreditCardCharge
}

// NoData reports the "no matching objects" status.
func (r *Response) NoData() bool {
	return r.StatusCode == "1"
}

// PulledTxn is the flat view of a decoded check, bill or charge.
type PulledTxn struct {
	Type         string
	TxnID        string
	EditSequence string
	Amount       decimal.Decimal
	TxnDate      time.Time
	Payee        string
	Account      string
	RefNumber    string
	Memo         string
	ExpenseLines []ExpenseLine
	ItemLines    []ItemLine
}

// Transactions flattens every decoded check, bill and charge.
func (r *Response) Transactions() []PulledTxn {
	out := make([]PulledTxn, 0, len(r.Checks)+len(r.Bills)+len(r.CreditCardCharges))
	for _, c := range r.Checks {
		out = append(out, PulledTxn{
			Type: TxnTypeCheck, TxnID: c.TxnID, EditSequence: c.EditSequence,
			Amount: c.Amount, TxnDate: c.TxnDate, Payee: c.Payee.Name(), Account: c.Account.Name(),
			RefNumber: c.RefNumber, Memo: c.Memo, ExpenseLines: c.ExpenseLines, ItemLines: c.ItemLines,
		})
	}
	for _, b := range r.Bills {
		out = append(out, PulledTxn{
			Type: TxnTypeBill, TxnID: b.TxnID, EditSequence: b.EditSequence,
			Amount: b.AmountDue, TxnDate: b.TxnDate, Payee: b.Vendor.Name(), Account: b.APAccount.Name(),
			RefNumber: b.RefNumber, Memo: b.Memo, ExpenseLines: b.ExpenseLines, ItemLines: b.ItemLines,
		})
	}
	for _, c := range r.CreditCardCharges {
		out = append(out, PulledTxn{
			Type: TxnTypeCreditCardCharge, TxnID: c.TxnID, EditSequence: c.EditSequence,
			Amount: c.Amount, TxnDate: c.TxnDate, Payee: c.Payee.Name(), Account: c.Account.Name(),
			RefNumber: c.RefNumber, Memo: c.Memo, ExpenseLines: c.ExpenseLines, ItemLines: c.ItemLines,
		})
	}
	return out
}
