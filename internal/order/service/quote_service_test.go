package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuoteComputesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	enquiry, err := env.svc.Enquiry.Create(ctx, CreateEnquiryInput{ClientName: "Jones"})
	require.NoError(t, err)

	quote, err := env.svc.Quote.Create(ctx, CreateQuoteInput{
		EnquiryID:  enquiry.ID,
		ClientName: "Jones",
		Items: []CreateQuoteItemInput{
			{Code: "K01", Description: "Island", Quantity: 1, UnitPrice: decimal.RequireFromString("1250.50")},
			{Code: "S01", Description: "Shelf", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
		},
	}, "sales-1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusDraft, quote.Status)
	assert.Equal(t, "1310.47", quote.Total.StringFixed(2))
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "59.97", quote.Items[1].LineTotal.StringFixed(2))

	stored, err := env.svc.Enquiry.Get(ctx, enquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EnquiryStatusQuoted, stored.Status)
}

func TestCreateQuoteValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Quote.Create(ctx, CreateQuoteInput{ClientName: "X", Items: []CreateQuoteItemInput{
		{Code: "A"}, {Code: "A"},
	}}, "sales-1")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.Quote.Create(ctx, CreateQuoteInput{ClientName: "X", Items: []CreateQuoteItemInput{
		{Code: "A", Quantity: -1},
	}}, "sales-1")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.Quote.Create(ctx, CreateQuoteInput{ClientName: "X", EnquiryID: "missing"}, "sales-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int64(0), env.count(t, &entity.Quote{}))
}

func TestQuoteTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusDraft)

	_, err := env.svc.Quote.Transition(ctx, quote.ID, entity.QuoteStatusConverted, "sales-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	sent, err := env.svc.Quote.Transition(ctx, quote.ID, entity.QuoteStatusSent, "sales-1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusSent, sent.Status)

	_, err = env.svc.Quote.Transition(ctx, quote.ID, entity.QuoteStatusDraft, "sales-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	approved, err := env.svc.Quote.Transition(ctx, quote.ID, entity.QuoteStatusApproved, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestQuoteApprovalGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusDraft)

	_, err := env.svc.Quote.DecideApproval(ctx, quote.ID, true, "lead-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	pending, err := env.svc.Quote.RequestApproval(ctx, quote.ID, "sales-1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteApprovalPending, pending.ApprovalStatus)

	_, err = env.svc.Quote.Transition(ctx, quote.ID, entity.QuoteStatusApproved, "client-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	rejected, err := env.svc.Quote.DecideApproval(ctx, quote.ID, false, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteApprovalRejected, rejected.ApprovalStatus)

	_, err = env.svc.Quote.RequestApproval(ctx, quote.ID, "sales-1")
	require.NoError(t, err)
	decided, err := env.svc.Quote.DecideApproval(ctx, quote.ID, true, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteApprovalApproved, decided.ApprovalStatus)
}

func TestMarkEnquiryLost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	enquiry, err := env.svc.Enquiry.Create(ctx, CreateEnquiryInput{ClientName: "Brown"})
	require.NoError(t, err)

	_, err = env.svc.Enquiry.MarkLost(ctx, enquiry.ID, "", "sales-1")
	assert.True(t, errors.Is(err, ErrValidation))

	lost, err := env.svc.Enquiry.MarkLost(ctx, enquiry.ID, "went with a competitor", "sales-1")
	require.NoError(t, err)
	assert.Equal(t, entity.EnquiryStatusLost, lost.Status)
	assert.Equal(t, "went with a competitor", lost.LostReason)

	_, err = env.svc.Enquiry.MarkLost(ctx, enquiry.ID, "again", "sales-1")
	assert.True(t, errors.Is(err, ErrIllegalTransition))
}
