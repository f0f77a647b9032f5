package soap

import "strings"

// Method is one of the Web Connector callbacks.
type Method string

const (
	MethodUnknown            Method = ""
	MethodServerVersion      Method = "serverVersion"
	MethodClientVersion      Method = "clientVersion"
	MethodAuthenticate       Method = "authenticate"
	MethodSendRequestXML     Method = "sendRequestXML"
	MethodReceiveResponseXML Method = "receiveResponseXML"
	MethodConnectionError    Method = "connectionError"
	MethodGetLastError       Method = "getLastError"
	MethodCloseConnection    Method = "closeConnection"
)

// Methods lists every supported callback in WSDL order.
var Methods = []Method{
	MethodServerVersion,
	MethodClientVersion,
	MethodAuthenticate,
	MethodSendRequestXML,
	MethodReceiveResponseXML,
	MethodConnectionError,
	MethodGetLastError,
	MethodCloseConnection,
}

// Lookup matches an element name against the known methods, ignoring case.
func Lookup(name string) Method {
	for _, m := range Methods {
		if strings.EqualFold(name, string(m)) {
			return m
		}
	}
	return MethodUnknown
}

// Detect finds the method whose name occurs first anywhere in body, ignoring
// case. It is the fallback for envelopes whose Body cannot be walked.
func Detect(body string) Method {
	lower := strings.ToLower(body)
	found, at := MethodUnknown, -1
	for _, m := range Methods {
		i := strings.Index(lower, strings.ToLower(string(m)))
		if i >= 0 && (at < 0 || i < at) {
			found, at = m, i
		}
	}
	return found
}
