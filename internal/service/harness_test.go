package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/pkg/mailer"
	"qbwc-sync-be/internal/repository/memory"
	"qbwc-sync-be/internal/repository/specification"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/database"
	"qbwc-sync-be/pkg/events"
	"qbwc-sync-be/pkg/qbxml"
	"qbwc-sync-be/pkg/reconcile"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "s3cret"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingMailer struct {
	mu      sync.Mutex
	reports []mailer.SyncReport
}

func (m *recordingMailer) SendSyncFailureReport(_ string, report mailer.SyncReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	uow      unitofwork.RepositoryFactory
	company  *entity.Company
	queue    ISyncQueueService
	sessions ISyncSessionService
	wc       IWebConnectorService
	events   *recordingPublisher
	mail     *recordingMailer
}

type harnessOption func(*SessionOptions)

func withAutoQueue(o *SessionOptions) { o.AutoQueue = true }

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenGormQuiet(database.DriverSQLite, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newHarness(t *testing.T, options ...harnessOption) *harness {
	t.Helper()
	ctx := context.Background()
	db := openServiceDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	log := logger.NewNopLogger()

	company := &entity.Company{Code: "T1", Name: "Tenant One", IsActive: true}
	require.NoError(t, factory.NewUnitOfWork(ctx).CompanyRepository().Create(ctx, company))

	opts := SessionOptions{}
	for _, o := range options {
		o(&opts)
	}

	pub := &recordingPublisher{}
	mail := &recordingMailer{}
	notifier := NewSyncNotifier(factory, pub, mail, "ops@example.com", log)
	notifier.(*syncNotifier).async = func(f func()) { f() }

	queue := NewSyncQueueService(factory, log, 30, 500)
	credentials := NewCredentialService(factory, memory.NewCompanyCache(0), testSecret, "")
	handler := NewSyncResponseHandler(factory, reconcile.NewEngine(reconcile.DefaultConfig()), reconcile.DefaultPolicy(), log)
	sessions := NewSyncSessionService(factory, credentials, queue, handler, notifier, nil, log, opts)
	wc := NewWebConnectorService(sessions, log, WebConnectorOptions{ServerVersion: "1.2.3"})

	return &harness{
		ctx:      ctx,
		db:       db,
		uow:      factory,
		company:  company,
		queue:    queue,
		sessions: sessions,
		wc:       wc,
		events:   pub,
		mail:     mail,
	}
}

func (h *harness) enqueue(t *testing.T, kinds ...qbxml.OperationKind) {
	t.Helper()
	require.NoError(t, h.queue.Enqueue(h.ctx, h.company.Id, PullOperations(qbxml.QueryFilter{}, kinds...)))
}

// call sends one SOAP request built from alternating name/value pairs.
func (h *harness) call(t *testing.T, method string, params ...string) soapResult {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>`)
	b.WriteString(`<` + method + ` xmlns="http://developer.intuit.com/">`)
	for i := 0; i+1 < len(params); i += 2 {
		b.WriteString(fmt.Sprintf("<%s>%s</%s>", params[i], qbxml.Escape(params[i+1]), params[i]))
	}
	b.WriteString(`</` + method + `></soap:Body></soap:Envelope>`)

	out := h.wc.Handle(h.ctx, []byte(b.String()))
	var r soapResult
	require.NoError(t, xml.Unmarshal([]byte(out), &r), out)
	return r
}

type soapResult struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
		Inner struct {
			XMLName xml.Name
			Result  struct {
				Text    string   `xml:",chardata"`
				Strings []string `xml:"string"`
			} `xml:",any"`
		} `xml:",any"`
	} `xml:"Body"`
}

func (r soapResult) text() string { return r.Body.Inner.Result.Text }

func (r soapResult) values() []string { return r.Body.Inner.Result.Strings }

func (r soapResult) number(t *testing.T) int {
	t.Helper()
	n, err := strconv.Atoi(strings.TrimSpace(r.text()))
	require.NoError(t, err)
	return n
}

func (h *harness) authenticate(t *testing.T) (string, string) {
	t.Helper()
	res := h.call(t, "authenticate", "strUserName", "sync-t1", "strPassword", testSecret).values()
	require.Len(t, res, 2)
	return res[0], res[1]
}

const checkRs = `<?xml version="1.0" ?><QBXML><QBXMLMsgsRs>
<CheckQueryRs requestID="1" statusCode="0" statusSeverity="Info" statusMessage="Status OK">
<CheckRet><TxnID>CHK-1</TxnID><EditSequence>100</EditSequence>
<AccountRef><FullName>Checking</FullName></AccountRef>
<PayeeEntityRef><FullName>City Power</FullName></PayeeEntityRef>
<RefNumber>1001</RefNumber><TxnDate>2024-03-01</TxnDate><Amount>245.10</Amount><Memo>March power</Memo>
<ExpenseLineRet><TxnLineID>L1</TxnLineID><AccountRef><FullName>Utilities</FullName></AccountRef><Amount>245.10</Amount></ExpenseLineRet>
</CheckRet>
</CheckQueryRs></QBXMLMsgsRs></QBXML>`

const billRs = `<?xml version="1.0" ?><QBXML><QBXMLMsgsRs>
<BillQueryRs requestID="1" statusCode="0" statusSeverity="Info" statusMessage="Status OK">
<BillRet><TxnID>BILL-1</TxnID><EditSequence>200</EditSequence>
<VendorRef><FullName>Paper Co</FullName></VendorRef>
<APAccountRef><FullName>Accounts Payable</FullName></APAccountRef>
<TxnDate>2024-03-05</TxnDate><DueDate>2024-04-05</DueDate><AmountDue>80.00</AmountDue><RefNumber>INV-9</RefNumber>
</BillRet>
</BillQueryRs></QBXMLMsgsRs></QBXML>`

const chargeRs = `<?xml version="1.0" ?><QBXML><QBXMLMsgsRs>
<CreditCardChargeQueryRs requestID="1" statusCode="1" statusSeverity="Info" statusMessage="A query request did not find a matching object in QuickBooks">
</CreditCardChargeQueryRs></QBXMLMsgsRs></QBXML>`

func (h *harness) operations(t *testing.T) []*entity.SyncOperation {
	t.Helper()
	ops, err := h.uow.NewUnitOfWork(h.ctx).SyncOperationRepository().FindAll(h.ctx,
		specification.ByCompanyID{CompanyID: h.company.Id},
		specification.QueueOrder{},
	)
	require.NoError(t, err)
	return ops
}
