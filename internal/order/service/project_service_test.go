package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldAndResumeProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, items := testutil.SeedProject(t, env.db, entity.ProjectStatusInDesign,
		entity.ItemStatusInDesign, entity.ItemStatusApproved)

	held, err := env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionHold, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectStatusOnHold, held.Status)
	assert.Equal(t, entity.ProjectStatusInDesign, held.HeldFrom)

	_, err = env.svc.Item.Advance(ctx, items[0].ID, entity.ItemStatusDrawingsComplete, "designer-1")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionHold, "lead-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	resumed, err := env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionResume, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectStatusInDesign, resumed.Status)
	assert.Empty(t, resumed.HeldFrom)

	_, err = env.svc.Item.Advance(ctx, items[0].ID, entity.ItemStatusDrawingsComplete, "designer-1")
	assert.NoError(t, err)
}

func TestCancelProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := testutil.SeedProject(t, env.db, entity.ProjectStatusInProduction, entity.ItemStatusInProduction)

	cancelled, err := env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionCancel, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectStatusCancelled, cancelled.Status)

	_, err = env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionCancel, "admin")
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	_, err = env.svc.Project.RequestTransition(ctx, project.ID, ProjectActionResume, "admin")
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	_, err = env.svc.Project.RequestTransition(ctx, project.ID, "archive", "admin")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMarkDepositPaidOpensDesign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusSent)
	res, err := env.svc.Conversion.ConvertFromSignature(ctx, SignatureCompletion{
		EnvelopeID: "env-pay", QuoteID: quote.ID, Status: SignatureStatusCompleted, ProjectName: "Gated",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, entity.ProjectStatusAwaitingDeposit, res.Project.Status)

	paid, err := env.svc.Invoice.MarkPaid(ctx, res.Invoice.ID, "accounts-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Invoice.Status)
	assert.NotNil(t, paid.Invoice.PaidAt)
	assert.True(t, paid.DesignOpened)
	assert.Equal(t, entity.ProjectStatusDesignPending, paid.Project.Status)

	sent := env.notifier.ofType(entity.NotificationDepositPaid)
	require.Len(t, sent, 1)
	assert.ElementsMatch(t, []string{"lead-1", "designer-1", "designer-2"}, sent[0].UserIDs)

	_, err = env.svc.Invoice.MarkPaid(ctx, res.Invoice.ID, "accounts-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))
}

func TestMarkPaidOnActiveProjectLeavesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusApproved)
	project, invoice, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Direct"})
	require.NoError(t, err)

	paid, err := env.svc.Invoice.MarkPaid(ctx, invoice.ID, "accounts-1")
	require.NoError(t, err)
	assert.False(t, paid.DesignOpened)
	assert.Equal(t, project.Status, paid.Project.Status)
	assert.Empty(t, env.notifier.ofType(entity.NotificationDepositPaid))
}
