package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"qbwc-sync-be/pkg/qbxml"
)

// agent plays the Web Connector side of a sync run against a live server.
type agent struct {
	endpoint string
	client   *http.Client
	nextTxn  int
}

func newAgent(endpoint string) *agent {
	return &agent{endpoint: endpoint, client: &http.Client{Timeout: 30 * time.Second}}
}

type callResult struct {
	Body struct {
		Fault *struct {
			String string `xml:"faultstring"`
		} `xml:"Fault"`
		Inner struct {
			Result struct {
				Text    string   `xml:",chardata"`
				Strings []string `xml:"string"`
			} `xml:",any"`
		} `xml:",any"`
	} `xml:"Body"`
}

// call posts one SOAP request built from alternating name/value pairs.
func (a *agent) call(method string, params ...string) (*callResult, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>`)
	b.WriteString(`<` + method + ` xmlns="http://developer.intuit.com/">`)
	for i := 0; i+1 < len(params); i += 2 {
		fmt.Fprintf(&b, "<%s>%s</%s>", params[i], qbxml.Escape(params[i+1]), params[i])
	}
	b.WriteString(`</` + method + `></soap:Body></soap:Envelope>`)

	req, err := http.NewRequest(http.MethodPost, a.endpoint, bytes.NewBufferString(b.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"http://developer.intuit.com/`+method+`"`)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out callResult
	if err := xml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if out.Body.Fault != nil {
		return nil, fmt.Errorf("%s fault: %s", method, out.Body.Fault.String)
	}
	return &out, nil
}

func (r *callResult) text() string { return r.Body.Inner.Result.Text }

func (r *callResult) values() []string { return r.Body.Inner.Result.Strings }

func (r *callResult) number() int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.text()))
	return n
}

var requestTag = regexp.MustCompile(`<(\w+)Rq\b`)

// respond fabricates the QuickBooks answer to one qbXML request.
func (a *agent) respond(request string) (response, tag string) {
	for _, m := range requestTag.FindAllStringSubmatch(request, -1) {
		if m[1] != "QBXMLMsgs" {
			tag = m[1]
			break
		}
	}
	if tag == "" {
		return "", ""
	}
	body := cannedBody(tag, a)
	return `<?xml version="1.0" ?><QBXML><QBXMLMsgsRs>` +
		`<` + tag + `Rs requestID="1" statusCode="0" statusSeverity="Info" statusMessage="Status OK">` +
		body +
		`</` + tag + `Rs></QBXMLMsgsRs></QBXML>`, tag
}

func (a *agent) txnID() string {
	a.nextTxn++
	return fmt.Sprintf("SIM-%04d", a.nextTxn)
}

func cannedBody(tag string, a *agent) string {
	today := time.Now().UTC().Format("2006-01-02")
	switch tag {
	case "VendorQuery":
		return `<VendorRet><ListID>80000001-1</ListID><EditSequence>1</EditSequence><Name>City Power</Name><IsActive>true</IsActive><Balance>0.00</Balance></VendorRet>` +
			`<VendorRet><ListID>80000002-1</ListID><EditSequence>1</EditSequence><Name>Paper Co</Name><IsActive>true</IsActive><Balance>80.00</Balance></VendorRet>`
	case "CustomerQuery":
		return `<CustomerRet><ListID>80000010-1</ListID><EditSequence>1</EditSequence><Name>Acme</Name><FullName>Acme</FullName><IsActive>true</IsActive></CustomerRet>`
	case "AccountQuery":
		return `<AccountRet><ListID>80000020-1</ListID><EditSequence>1</EditSequence><Name>Checking</Name><FullName>Checking</FullName><IsActive>true</IsActive><AccountType>Bank</AccountType><Balance>1200.00</Balance></AccountRet>`
	case "CheckQuery":
		return `<CheckRet><TxnID>QB-CHK-1</TxnID><EditSequence>7</EditSequence><AccountRef><FullName>Checking</FullName></AccountRef>` +
			`<PayeeEntityRef><FullName>Water Works</FullName></PayeeEntityRef><RefNumber>4100</RefNumber><TxnDate>` + today + `</TxnDate>` +
			`<Amount>61.40</Amount><ExpenseLineRet><TxnLineID>1</TxnLineID><AccountRef><FullName>Utilities</FullName></AccountRef><Amount>61.40</Amount></ExpenseLineRet></CheckRet>`
	case "BillQuery", "CreditCardChargeQuery":
		return ""
	case "CheckAdd", "CheckMod":
		return `<CheckRet><TxnID>` + a.txnID() + `</TxnID><EditSequence>1</EditSequence><TxnDate>` + today + `</TxnDate><Amount>0.00</Amount></CheckRet>`
	case "BillAdd", "BillMod":
		return `<BillRet><TxnID>` + a.txnID() + `</TxnID><EditSequence>1</EditSequence><TxnDate>` + today + `</TxnDate><AmountDue>0.00</AmountDue></BillRet>`
	case "CreditCardChargeAdd":
		return `<CreditCardChargeRet><TxnID>` + a.txnID() + `</TxnID><EditSequence>1</EditSequence><TxnDate>` + today + `</TxnDate><Amount>0.00</Amount></CreditCardChargeRet>`
	}
	return ""
}
