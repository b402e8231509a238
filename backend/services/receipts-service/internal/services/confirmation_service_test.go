package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issue(t *testing.T, e *testEnv, f *leaseFixture) (string, *models.ReceiptAction) {
	t.Helper()
	raw, action, err := e.tokens.IssueConfirmToken(context.Background(), f.lease.ID, june2024, f.landlord.ID)
	require.NoError(t, err)
	return raw, action
}

func TestIssueConfirmTokenStoresOnlyHash(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)

	raw, action := issue(t, e, f)
	assert.Len(t, raw, 48) // 24 bytes hex
	assert.NotEqual(t, raw, action.TokenHash)
	assert.Equal(t, utils.HashToken(raw), action.TokenHash)
	assert.Equal(t, models.ActionStatusPending, action.Status)
	assert.Equal(t, e.clock.Add(7*24*time.Hour), action.ExpiresAt)

	raw2, _ := issue(t, e, f)
	assert.NotEqual(t, raw, raw2, "each reminder mints a fresh token")

	_, _, err := e.tokens.IssueConfirmToken(context.Background(), f.lease.ID, june2024, uuid.New())
	assert.ErrorIs(t, err, internal_utils.ErrForbidden)
}

func TestConfirmYesGeneratesAndSendsReceipt(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, action := issue(t, e, f)

	res, err := e.confirm.Confirm(context.Background(), raw, "yes")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionYes, res.Decision)
	require.NotNil(t, res.Receipt)
	assert.EqualValues(t, 90000, res.Receipt.TotalCents)

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusConsumed, stored.Status)
	assert.Equal(t, models.ActionOutcomeSent, utils.Val(stored.Outcome))
	assert.Equal(t, res.Receipt.ID, utils.Val(stored.ResultReceiptID))
	assert.NotNil(t, stored.ConsumedAt)

	pay, _ := e.payments.GetByLeaseAndPeriod(context.Background(), f.lease.ID, june2024)
	require.NotNil(t, pay)
	assert.EqualValues(t, 90000, pay.AmountCents)
	assert.Equal(t, models.PaymentSourceConfirmation, pay.Source)

	assert.Len(t, e.mailer.messages(), 1)
	assert.Equal(t, "2024-06", e.leases.watermark(f.lease.ID))
}

func TestConfirmYesKeepsEditedReceiptContent(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	ctx := context.Background()

	edited := "Quittance rédigée par le bailleur"
	gen, err := e.receipts.Generate(ctx, f.landlord.ID, f.lease.ID, june2024, &edited)
	require.NoError(t, err)

	raw, _ := issue(t, e, f)
	res, err := e.confirm.Confirm(ctx, raw, "yes")
	require.NoError(t, err)
	assert.Equal(t, gen.Receipt.ID, res.Receipt.ID)

	stored, err := e.receiptsDB.GetByID(ctx, gen.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, edited, stored.ContentText)
	assert.Equal(t, 1, e.receiptsDB.count())
}

func TestConfirmNoRecordsDecisionOnly(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, action := issue(t, e, f)

	res, err := e.confirm.Confirm(context.Background(), raw, "no")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNo, res.Decision)
	assert.Nil(t, res.Receipt)

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusConsumed, stored.Status)
	assert.Equal(t, models.DecisionNo, *stored.Decision)
	assert.Equal(t, models.ActionOutcomeNotPaid, utils.Val(stored.Outcome))
	assert.Zero(t, e.receiptsDB.count())
	assert.Empty(t, e.mailer.messages())
	assert.Empty(t, e.leases.watermark(f.lease.ID))
}

func TestConfirmIsSingleUse(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, _ := issue(t, e, f)

	_, err := e.confirm.Confirm(context.Background(), raw, "yes")
	require.NoError(t, err)
	upserts := e.receiptsDB.upserts

	_, err = e.confirm.Confirm(context.Background(), raw, "yes")
	assert.ErrorIs(t, err, internal_utils.ErrTokenAlreadyUsed)
	_, err = e.confirm.Confirm(context.Background(), raw, "no")
	assert.ErrorIs(t, err, internal_utils.ErrTokenAlreadyUsed)

	assert.Len(t, e.mailer.messages(), 1)
	assert.Equal(t, upserts, e.receiptsDB.upserts, "no second receipt mutation")
}

func TestConfirmConcurrentClicksSendOnce(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, _ := issue(t, e, f)

	const clicks = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.confirm.Confirm(context.Background(), raw, "yes")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	for _, err := range errs {
		assert.True(t,
			errors.Is(err, internal_utils.ErrTokenAlreadyUsed) || errors.Is(err, internal_utils.ErrLockFailed),
			"unexpected error %v", err)
	}
	assert.Len(t, e.mailer.messages(), 1)
	assert.Equal(t, 1, e.receiptsDB.count())
}

func TestConfirmExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, action := issue(t, e, f)

	e.clock = e.clock.Add(8 * 24 * time.Hour)
	_, err := e.confirm.Confirm(context.Background(), raw, "yes")
	assert.ErrorIs(t, err, internal_utils.ErrTokenExpired)

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusExpired, stored.Status)
	assert.Empty(t, e.mailer.messages())

	_, err = e.confirm.Confirm(context.Background(), raw, "yes")
	assert.ErrorIs(t, err, internal_utils.ErrTokenAlreadyUsed)
}

func TestConfirmRejectsUnknownTokenAndAction(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	raw, action := issue(t, e, f)

	_, err := e.confirm.Confirm(context.Background(), "deadbeef", "yes")
	assert.ErrorIs(t, err, internal_utils.ErrInvalidToken)
	_, err = e.confirm.Confirm(context.Background(), "", "yes")
	assert.ErrorIs(t, err, internal_utils.ErrInvalidToken)

	_, err = e.confirm.Confirm(context.Background(), raw, "maybe")
	assert.ErrorIs(t, err, internal_utils.ErrInvalidAction)

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusPending, stored.Status, "bad input must not burn the token")
}

func TestConfirmWithEmailDisabledConsumesToken(t *testing.T) {
	e := newTestEnv(t)
	e.mailer.disabled = true
	f := e.seedLease(t, models.PlanFree, nil)
	raw, action := issue(t, e, f)

	res, err := e.confirm.Confirm(context.Background(), raw, "yes")
	require.NoError(t, err)
	assert.True(t, res.EmailDisabled)

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusConsumed, stored.Status)
	assert.Equal(t, models.ActionOutcomeEmailDisabled, utils.Val(stored.Outcome))
	assert.NotNil(t, stored.ResultReceiptID)
}

func TestConfirmSendFailureMovesActionToError(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	e.mailer.failFor[utils.Val(f.tenant.Email)] = errors.New("sendgrid status 502")
	raw, action := issue(t, e, f)

	_, err := e.confirm.Confirm(context.Background(), raw, "yes")
	require.ErrorIs(t, err, internal_utils.ErrSendFailed)
	assert.Equal(t, internal_utils.ReasonSendFailed, internal_utils.ConfirmReason(err))

	stored, _ := e.actions.GetByID(context.Background(), action.ID)
	assert.Equal(t, models.ActionStatusError, stored.Status)
	assert.Contains(t, utils.Val(stored.ErrorMessage), "sendgrid status 502")

	// The receipt stays valid and re-sendable.
	rec, _ := e.receiptsDB.GetByLeaseAndPeriod(context.Background(), f.lease.ID, june2024)
	require.NotNil(t, rec)
	assert.Equal(t, models.ReceiptStatusError, rec.Status)

	_, err = e.confirm.Confirm(context.Background(), raw, "yes")
	assert.ErrorIs(t, err, internal_utils.ErrTokenAlreadyUsed)
}

func TestResetStuckProcessing(t *testing.T) {
	e := newTestEnv(t)
	f := e.seedLease(t, models.PlanFree, nil)
	_, action := issue(t, e, f)
	ctx := context.Background()

	err := e.confirm.ResetStuck(ctx, action.ID)
	assert.ErrorIs(t, err, internal_utils.ErrActionNotStuck)

	stuckAt := time.Now().Add(-time.Hour)
	a := *action
	a.Status = models.ActionStatusProcessing
	a.ProcessingAt = &stuckAt
	e.actions.put(a)
	e.confirm.now = time.Now

	stuck, err := e.confirm.ListStuck(ctx, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, stuck, 1)

	require.NoError(t, e.confirm.ResetStuck(ctx, action.ID))
	stored, _ := e.actions.GetByID(ctx, action.ID)
	assert.Equal(t, models.ActionStatusError, stored.Status)
	assert.Equal(t, models.ActionOutcomeOperatorReset, utils.Val(stored.Outcome))

	assert.ErrorIs(t, e.confirm.ResetStuck(ctx, uuid.New()), internal_utils.ErrActionNotFound)
}
