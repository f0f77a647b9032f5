package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSendSyncFailureReport(t *testing.T) {
	cs := &captureSender{}
	svc := &emailService{dialer: cs, senderEmail: "sync@example.com", senderName: "QB Sync"}

	err := svc.SendSyncFailureReport("ops@example.com", SyncReport{
		CompanyCode: "T1",
		CompanyName: "Acme & Sons",
		Ticket:      "abc",
		Total:       3,
		Failed:      []FailedOperation{{Kind: "pull_bills", Message: "status 3120 <bad ref>"}},
	})
	require.NoError(t, err)
	require.Len(t, cs.sent, 1)

	m := cs.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"QuickBooks sync for T1: 1 of 3 operations failed"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
}

func TestRenderReportEscapes(t *testing.T) {
	out := renderReport(SyncReport{CompanyName: "Acme & Sons", Failed: []FailedOperation{{Kind: "pull_bills", Message: "<bad ref>"}}})
	assert.Contains(t, out, "Acme &amp; Sons")
	assert.Contains(t, out, "&lt;bad ref&gt;")
}

func TestSendSyncFailureReportWrapsError(t *testing.T) {
	svc := &emailService{dialer: &captureSender{err: errors.New("dial failed")}, senderEmail: "a@b.c"}
	err := svc.SendSyncFailureReport("ops@example.com", SyncReport{})
	assert.ErrorContains(t, err, "dial failed")
}
