package qbxml

import "fmt"

// OperationKind names one unit of sync work. The set is closed: every kind
// must have an entry in kindSpecs and a case in RequestFromParams.
type OperationKind string

const (
	KindPullVendors           OperationKind = "pull_vendors"
	KindPullCustomers         OperationKind = "pull_customers"
	KindPullAccounts          OperationKind = "pull_accounts"
	KindPullChecks            OperationKind = "pull_checks"
	KindPullBills             OperationKind = "pull_bills"
	KindPullCreditCardCharges OperationKind = "pull_credit_card_charges"
	KindAddCheck              OperationKind = "add_check"
	KindAddBill               OperationKind = "add_bill"
	KindAddCreditCardCharge   OperationKind = "add_credit_card_charge"
	KindModifyCheck           OperationKind = "modify_check"
	KindModifyBill            OperationKind = "modify_bill"
)

// AllKinds lists every operation kind in a stable order.
var AllKinds = []OperationKind{
	KindPullVendors,
	KindPullCustomers,
	KindPullAccounts,
	KindPullChecks,
	KindPullBills,
	KindPullCreditCardCharges,
	KindAddCheck,
	KindAddBill,
	KindAddCreditCardCharge,
	KindModifyCheck,
	KindModifyBill,
}

type entityKind int

const (
	entityVendor entityKind = iota
	entityCustomer
	entityAccount
	entityCheck
	entityBill
	entityCreditCardCharge
)

type direction int

const (
	directionPull direction = iota
	directionAdd
	directionModify
)

type kindSpec struct {
	requestTag  string
	responseTag string
	entity      entityKind
	direction   direction
}

var kindSpecs = map[OperationKind]kindSpec{
	KindPullVendors:           {"VendorQueryRq", "VendorQueryRs", entityVendor, directionPull},
	KindPullCustomers:         {"CustomerQueryRq", "CustomerQueryRs", entityCustomer, directionPull},
	KindPullAccounts:          {"AccountQueryRq", "AccountQueryRs", entityAccount, directionPull},
	KindPullChecks:            {"CheckQueryRq", "CheckQueryRs", entityCheck, directionPull},
	KindPullBills:             {"BillQueryRq", "BillQueryRs", entityBill, directionPull},
	KindPullCreditCardCharges: {"CreditCardChargeQueryRq", "CreditCardChargeQueryRs", entityCreditCardCharge, directionPull},
	KindAddCheck:              {"CheckAddRq", "CheckAddRs", entityCheck, directionAdd},
	KindAddBill:               {"BillAddRq", "BillAddRs", entityBill, directionAdd},
	KindAddCreditCardCharge:   {"CreditCardChargeAddRq", "CreditCardChargeAddRs", entityCreditCardCharge, directionAdd},
	KindModifyCheck:           {"CheckModRq", "CheckModRs", entityCheck, directionModify},
	KindModifyBill:            {"BillModRq", "BillModRs", entityBill, directionModify},
}

// ParseKind validates a stored kind string.
func ParseKind(s string) (OperationKind, error) {
	k := OperationKind(s)
	if _, ok := kindSpecs[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k OperationKind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// IsPull reports whether the kind is a query against the remote company file.
func (k OperationKind) IsPull() bool {
	return kindSpecs[k].direction == directionPull && k.Valid()
}

// IsPush reports whether the kind creates or modifies a remote transaction.
func (k OperationKind) IsPush() bool {
	return k.Valid() && kindSpecs[k].direction != directionPull
}

// IsTransaction reports whether the kind deals with checks, bills or charges
// rather than list entities.
func (k OperationKind) IsTransaction() bool {
	if !k.Valid() {
		return false
	}
	switch kindSpecs[k].entity {
	case entityCheck, entityBill, entityCreditCardCharge:
		return true
	}
	return false
}

// ResponseTag returns the qbXML response element name, e.g. "CheckQueryRs".
func (k OperationKind) ResponseTag() string {
	return kindSpecs[k].responseTag
}

// RequestTag returns the qbXML request element name, e.g. "CheckQueryRq".
func (k OperationKind) RequestTag() string {
	return kindSpecs[k].requestTag
}

// TxnType is the local store's name for the entity a transaction kind touches.
func (k OperationKind) TxnType() string {
	spec, ok := kindSpecs[k]
	if !ok {
		return ""
	}
	switch spec.entity {
	case entityCheck:
		return TxnTypeCheck
	case entityBill:
		return TxnTypeBill
	case entityCreditCardCharge:
		return TxnTypeCreditCardCharge
	case entityVendor:
		return ListTypeVendor
	case entityCustomer:
		return ListTypeCustomer
	case entityAccount:
		return ListTypeAccount
	}
	return ""
}

const (
	TxnTypeCheck            = "check"
	TxnTypeBill             = "bill"
	TxnTypeCreditCardCharge = "credit_card_charge"

	ListTypeVendor   = "vendor"
	ListTypeCustomer = "customer"
	ListTypeAccount  = "account"
)
