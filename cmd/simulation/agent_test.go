package main

import (
	"testing"

	"qbwc-sync-be/pkg/qbxml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedResponsesParse(t *testing.T) {
	a := newAgent("http://localhost")
	cases := map[string]qbxml.OperationKind{
		`<QBXML><QBXMLMsgsRq onError="stopOnError"><VendorQueryRq requestID="1"/></QBXMLMsgsRq></QBXML>`: qbxml.KindPullVendors,
		`<QBXML><QBXMLMsgsRq><CheckQueryRq requestID="1"></CheckQueryRq></QBXMLMsgsRq></QBXML>`:         qbxml.KindPullChecks,
		`<QBXML><QBXMLMsgsRq><BillQueryRq requestID="1"></BillQueryRq></QBXMLMsgsRq></QBXML>`:           qbxml.KindPullBills,
		`<QBXML><QBXMLMsgsRq><CheckAddRq requestID="1"><CheckAdd/></CheckAddRq></QBXMLMsgsRq></QBXML>`:  qbxml.KindAddCheck,
	}
	for request, kind := range cases {
		response, tag := a.respond(request)
		require.NotEmpty(t, tag, request)
		_, err := qbxml.Parse(kind, response)
		assert.NoError(t, err, tag)
	}
}

func TestAddResponsesGetFreshIDs(t *testing.T) {
	a := newAgent("http://localhost")
	first, _ := a.respond(`<CheckAddRq requestID="1">`)
	second, _ := a.respond(`<CheckAddRq requestID="1">`)
	assert.Contains(t, first, "SIM-0001")
	assert.Contains(t, second, "SIM-0002")
}
