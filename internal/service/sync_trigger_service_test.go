package service

import (
	"testing"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrigger(h *harness) ISyncTriggerService {
	return NewSyncTriggerService(h.uow, h.queue, h.sessions, 250)
}

func kindsOf(ops []dto.OperationResponse) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Kind)
	}
	return out
}

func TestSyncTrigger_Bundles(t *testing.T) {
	cases := []struct {
		bundle string
		kinds  []qbxml.OperationKind
	}{
		{dto.BundlePullLists, ListPullKinds},
		{dto.BundlePullTransactions, DefaultPullKinds},
		{dto.BundlePullAll, append(append([]qbxml.OperationKind{}, ListPullKinds...), DefaultPullKinds...)},
		{dto.BundlePush, nil},
	}
	for _, c := range cases {
		t.Run(c.bundle, func(t *testing.T) {
			h := newHarness(t)
			res, err := newTestTrigger(h).Trigger(h.ctx, h.company.Id, dto.TriggerSyncRequest{Bundle: c.bundle})
			require.NoError(t, err)

			want := make([]string, 0, len(c.kinds))
			for _, k := range c.kinds {
				want = append(want, string(k))
			}
			assert.Equal(t, want, kindsOf(res.Operations))
			assert.Equal(t, len(c.kinds), res.Queued)
		})
	}
}

func TestSyncTrigger_FullOrdersListsPushThenTransactions(t *testing.T) {
	h := newHarness(t)
	h.localTxn(t, &entity.Transaction{TxnDate: march(2), Payee: "City Power", Lines: expenseLines(""), NeedsPush: true})

	res, err := newTestTrigger(h).Trigger(h.ctx, h.company.Id, dto.TriggerSyncRequest{Bundle: dto.BundleFull, MaxReturned: 10})
	require.NoError(t, err)
	require.Equal(t, 7, res.Queued)

	ops := h.operations(t)
	require.Len(t, ops, 7)
	assert.Equal(t, qbxml.KindPullVendors, ops[0].Kind)
	assert.Equal(t, qbxml.KindAddCheck, ops[3].Kind)
	assert.Equal(t, qbxml.KindPullChecks, ops[4].Kind)
	assert.Equal(t, 10, ops[4].Params.Filter.MaxReturned)
}

func TestSyncTrigger_Errors(t *testing.T) {
	h := newHarness(t)
	trigger := newTestTrigger(h)

	_, err := trigger.Trigger(h.ctx, uuid.New(), dto.TriggerSyncRequest{Bundle: dto.BundlePullLists})
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	_, err = trigger.Trigger(h.ctx, h.company.Id, dto.TriggerSyncRequest{Bundle: "everything"})
	assert.ErrorIs(t, err, ErrInvalidBundle)

	inactive := &entity.Company{Code: "OFF", Name: "Dormant"}
	require.NoError(t, h.uow.NewUnitOfWork(h.ctx).CompanyRepository().Create(h.ctx, inactive))
	_, err = trigger.Trigger(h.ctx, inactive.Id, dto.TriggerSyncRequest{Bundle: dto.BundlePullLists})
	assert.ErrorIs(t, err, ErrCompanyInactive)

	_, err = trigger.Progress(h.ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSyncTrigger_PendingCancelAndProgress(t *testing.T) {
	h := newHarness(t)
	trigger := newTestTrigger(h)
	h.enqueue(t, qbxml.KindPullChecks, qbxml.KindPullBills)

	pending, err := trigger.Pending(h.ctx, h.company.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Pending)

	ticket, _ := h.authenticate(t)
	h.call(t, "sendRequestXML", "ticket", ticket)
	h.call(t, "receiveResponseXML", "ticket", ticket, "response", checkRs)

	progress, err := trigger.Progress(h.ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, "active", progress.Status)
	assert.Equal(t, 50, progress.Percent)
	assert.True(t, progress.HasMore)
	assert.Equal(t, int64(2), progress.Total)

	h.enqueue(t, qbxml.KindPullVendors)
	cancelled, err := trigger.CancelPending(h.ctx, h.company.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled.Cancelled, "claimed work is left to its session")

	list, err := trigger.Operations(h.ctx, h.company.Id, dto.OperationListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
}
