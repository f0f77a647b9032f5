package soap

import (
	"strconv"
	"strings"

	"qbwc-sync-be/pkg/qbxml"
)

const (
	Namespace   = "http://developer.intuit.com/"
	ContentType = "text/xml; charset=utf-8"

	FaultClient = "soap:Client"
	FaultServer = "soap:Server"
)

const (
	envelopeOpen = `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">` + "\n" +
		"<soap:Body>\n"
	envelopeClose = "</soap:Body>\n</soap:Envelope>\n"
)

func wrap(method Method, result string) string {
	var b strings.Builder
	b.WriteString(envelopeOpen)
	b.WriteString("<" + string(method) + `Response xmlns="` + Namespace + `">` + "\n")
	b.WriteString(result)
	b.WriteString("</" + string(method) + "Response>\n")
	b.WriteString(envelopeClose)
	return b.String()
}

func resultTag(method Method) string { return string(method) + "Result" }

// StringResponse answers method with a single string result. The value is
// escaped, so a qbXML request travels as text.
func StringResponse(method Method, value string) string {
	tag := resultTag(method)
	return wrap(method, "<"+tag+">"+qbxml.Escape(value)+"</"+tag+">\n")
}

// StringArrayResponse answers method with an ArrayOfString result.
func StringArrayResponse(method Method, values ...string) string {
	tag := resultTag(method)
	var b strings.Builder
	b.WriteString("<" + tag + ">\n")
	for _, v := range values {
		b.WriteString("<string>" + qbxml.Escape(v) + "</string>\n")
	}
	b.WriteString("</" + tag + ">\n")
	return wrap(method, b.String())
}

func IntResponse(method Method, n int) string {
	tag := resultTag(method)
	return wrap(method, "<"+tag+">"+strconv.Itoa(n)+"</"+tag+">\n")
}

// Fault renders a SOAP 1.1 fault.
func Fault(code, message string) string {
	return envelopeOpen +
		"<soap:Fault>\n" +
		"<faultcode>" + qbxml.Escape(code) + "</faultcode>\n" +
		"<faultstring>" + qbxml.Escape(message) + "</faultstring>\n" +
		"</soap:Fault>\n" +
		envelopeClose
}
