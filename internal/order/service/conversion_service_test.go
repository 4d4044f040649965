package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQ100(t *testing.T, env *testEnv, status entity.QuoteStatus) *entity.Quote {
	t.Helper()
	return testutil.SeedQuote(t, env.db, "Q-100", status,
		testutil.QuoteLine{Code: "K01", Description: "Kitchen base run", Floor: "GF", Room: "Kitchen", Quantity: 1, UnitPrice: "1500"},
		testutil.QuoteLine{Code: "W01", Description: "Wardrobe", Floor: "1F", Room: "Bedroom 1", Quantity: 2, UnitPrice: "300"},
	)
}

func TestConvertQuoteCreatesProjectItemsAndDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusApproved)
	require.Equal(t, "2100.00", quote.Total.StringFixed(2))

	project, invoice, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{
		ProjectName: "Smith Kitchen",
		SiteAddress: "1 High St",
		ActorID:     testutil.TestUserID,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ProjectStatusDesignPending, project.Status)
	assert.Equal(t, "Smith Kitchen", project.Name)
	assert.Equal(t, quote.ID, project.QuoteID)
	assert.Equal(t, "2100.00", project.ContractValue.StringFixed(2))

	assert.Equal(t, "630.00", invoice.Amount.StringFixed(2))
	assert.Equal(t, entity.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, project.ID, invoice.ProjectID)
	require.NotNil(t, project.DepositInvoiceID)
	assert.Equal(t, invoice.ID, *project.DepositInvoiceID)

	items, err := env.repos.Item.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for i, line := range quote.Items {
		assert.Equal(t, line.Code, items[i].ItemCode)
		assert.Equal(t, line.Quantity, items[i].Quantity)
		assert.Equal(t, line.Floor, items[i].Floor)
		assert.Equal(t, line.Room, items[i].Room)
		assert.True(t, line.UnitPrice.Equal(items[i].UnitPrice))
		assert.Equal(t, entity.ItemStatusAwaitingDrawings, items[i].Status)
	}

	stored, err := env.repos.Quote.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusConverted, stored.Status)
	assert.NotNil(t, stored.ConvertedAt)

	drawings, err := env.repos.Drawing.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, drawings, 2)

	sent := env.notifier.ofType(entity.NotificationDrawingsCreated)
	require.Len(t, sent, 1)
	assert.ElementsMatch(t, []string{"lead-1", "designer-1", "designer-2"}, sent[0].UserIDs)
}

func TestConvertQuoteMarksEnquiryWon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	enquiry, err := env.svc.Enquiry.Create(ctx, CreateEnquiryInput{ClientName: "Smith"})
	require.NoError(t, err)
	quote := seedQ100(t, env, entity.QuoteStatusApproved)
	require.NoError(t, env.db.Model(quote).Update("enquiry_id", enquiry.ID).Error)

	_, _, err = env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Smith"})
	require.NoError(t, err)

	stored, err := env.svc.Enquiry.Get(ctx, enquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EnquiryStatusWon, stored.Status)
}

func TestConvertQuoteTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	_, _, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "First"})
	require.NoError(t, err)

	_, _, err = env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Second"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyConverted))

	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
	assert.Equal(t, int64(2), env.count(t, &entity.ProjectItem{}))
	assert.Equal(t, int64(1), env.count(t, &entity.Invoice{}))
}

func TestConvertQuoteRejectsQuoteWithExistingProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	// a project already points at the quote although the quote still reads approved
	existing, _ := testutil.SeedProject(t, env.db, entity.ProjectStatusDesignPending)
	require.NoError(t, env.db.Model(existing).Update("quote_id", quote.ID).Error)

	_, _, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Again"})
	assert.True(t, errors.Is(err, ErrAlreadyConverted))
	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
}

// seedCodeCollision makes the next generated project code already taken.
func seedCodeCollision(t *testing.T, env *testEnv) {
	t.Helper()
	existing, _ := testutil.SeedProject(t, env.db, entity.ProjectStatusDesignPending)
	code := fmt.Sprintf("PRJ-%d-0002", time.Now().Year())
	require.NoError(t, env.db.Model(existing).Update("code", code).Error)
}

func TestConvertQuoteCodeCollisionIsAPipelineFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedCodeCollision(t, env)
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	_, _, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Harbour"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAlreadyConverted))
	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, StepCreateProject, ce.Step)

	_, err = env.repos.Project.FindByQuoteID(ctx, quote.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	stored, err := env.repos.Quote.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusApproved, stored.Status)
	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
}

func TestProjectCreateReportsQuoteTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing, _ := testutil.SeedProject(t, env.db, entity.ProjectStatusDesignPending)

	err := env.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		err := tx.Project.Create(ctx, &entity.Project{
			ID:            uuid.New().String(),
			Code:          "PRJ-RACE-0001",
			Name:          "Racing conversion",
			Status:        entity.ProjectStatusDesignPending,
			ContractValue: decimal.NewFromInt(10),
			QuoteID:       existing.QuoteID,
		})
		assert.True(t, errors.Is(err, repository.ErrQuoteTaken))
		// the transaction is still usable after the savepoint rollback
		_, findErr := tx.Project.FindByID(ctx, existing.ID)
		return findErr
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
}

func TestConvertQuoteRequiresApprovedQuote(t *testing.T) {
	env := newTestEnv(t)
	quote := seedQ100(t, env, entity.QuoteStatusDraft)

	_, _, err := env.svc.Conversion.ConvertQuote(context.Background(), quote.ID, ConvertInput{ProjectName: "Draft"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, int64(0), env.count(t, &entity.Project{}))
}

func TestConvertQuoteValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.svc.Conversion.ConvertQuote(ctx, "missing", ConvertInput{ProjectName: "X"})
	assert.True(t, errors.Is(err, ErrNotFound))

	quote := seedQ100(t, env, entity.QuoteStatusApproved)
	_, _, err = env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "   "})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestConvertQuoteRollsBackWhenAStepFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quote := seedQ100(t, env, entity.QuoteStatusApproved)
	require.NoError(t, env.db.Migrator().DropTable(&entity.Invoice{}))

	_, _, err := env.svc.Conversion.ConvertQuote(ctx, quote.ID, ConvertInput{ProjectName: "Broken"})
	require.Error(t, err)
	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, StepCreateInvoice, ce.Step)
	assert.Equal(t, quote.ID, ce.QuoteID)

	assert.Equal(t, int64(0), env.count(t, &entity.Project{}))
	assert.Equal(t, int64(0), env.count(t, &entity.ProjectItem{}))
	assert.Equal(t, int64(0), env.count(t, &entity.DrawingRequirement{}))
	stored, err := env.repos.Quote.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusApproved, stored.Status)
	assert.Empty(t, env.notifier.sent)
}

func TestConvertQuoteSurvivesNotifierFailure(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errNotifierDown
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	project, invoice, err := env.svc.Conversion.ConvertQuote(context.Background(), quote.ID, ConvertInput{ProjectName: "Quiet"})
	require.NoError(t, err)
	assert.NotNil(t, project)
	assert.NotNil(t, invoice)
	assert.Len(t, env.notifier.sent, 1)
}

func TestConvertQuoteUsesConfiguredDepositRate(t *testing.T) {
	env := newTestEnv(t)
	conv := NewConversionService(env.repos, nil, nil, decimal.RequireFromString("0.25"), nil)
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	_, invoice, err := conv.ConvertQuote(context.Background(), quote.ID, ConvertInput{ProjectName: "Quarter"})
	require.NoError(t, err)
	assert.Equal(t, "525.00", invoice.Amount.StringFixed(2))
	assert.Equal(t, "0.25", invoice.Rate.String())
}

type fakeDeduper struct {
	seen      map[string]bool
	forgotten []string
	err       error
}

func (d *fakeDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *fakeDeduper) Forget(_ context.Context, key string) error {
	delete(d.seen, key)
	d.forgotten = append(d.forgotten, key)
	return nil
}

type fakeArchiver struct {
	objects map[string][]byte
}

func (a *fakeArchiver) Archive(_ context.Context, name string, payload []byte) error {
	a.objects[name] = payload
	return nil
}

func TestConvertFromSignatureWaitsForDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	archiver := &fakeArchiver{objects: map[string][]byte{}}
	env.svc.Conversion.SetArchiver(archiver)
	quote := seedQ100(t, env, entity.QuoteStatusSent)

	raw := []byte(`{"envelope_id":"env-1"}`)
	res, err := env.svc.Conversion.ConvertFromSignature(ctx, SignatureCompletion{
		EnvelopeID: "env-1",
		QuoteID:    quote.ID,
		Status:     SignatureStatusCompleted,
	}, raw)
	require.NoError(t, err)
	require.NotNil(t, res.Project)
	assert.False(t, res.Duplicate)
	assert.Equal(t, entity.ProjectStatusAwaitingDeposit, res.Project.Status)
	assert.Equal(t, "Client Q-100 Q-100", res.Project.Name)
	assert.Equal(t, "630.00", res.Invoice.Amount.StringFixed(2))
	assert.Equal(t, raw, archiver.objects["env-1.json"])

	// the design team hears about it once the deposit is paid
	assert.Empty(t, env.notifier.ofType(entity.NotificationDrawingsCreated))

	replay, err := env.svc.Conversion.ConvertFromSignature(ctx, SignatureCompletion{
		EnvelopeID: "env-1-redelivered",
		QuoteID:    quote.ID,
		Status:     SignatureStatusCompleted,
	}, nil)
	require.NoError(t, err)
	assert.True(t, replay.Duplicate)
	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
}

func TestConvertFromSignatureDropsRepeatedEnvelope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	deduper := &fakeDeduper{seen: map[string]bool{"env-2": true}}
	env.svc.Conversion.SetDeduper(deduper)
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	res, err := env.svc.Conversion.ConvertFromSignature(ctx, SignatureCompletion{
		EnvelopeID: "env-2", QuoteID: quote.ID, Status: SignatureStatusCompleted,
	}, nil)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(0), env.count(t, &entity.Project{}))
}

func TestConvertFromSignatureReleasesKeyOnFailure(t *testing.T) {
	env := newTestEnv(t)
	deduper := &fakeDeduper{seen: map[string]bool{}}
	env.svc.Conversion.SetDeduper(deduper)
	quote := seedQ100(t, env, entity.QuoteStatusDraft)

	_, err := env.svc.Conversion.ConvertFromSignature(context.Background(), SignatureCompletion{
		EnvelopeID: "env-3", QuoteID: quote.ID, Status: SignatureStatusCompleted,
	}, nil)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"env-3"}, deduper.forgotten)
}

func TestConvertFromSignatureRetriesAfterCodeCollision(t *testing.T) {
	env := newTestEnv(t)
	deduper := &fakeDeduper{seen: map[string]bool{}}
	env.svc.Conversion.SetDeduper(deduper)
	seedCodeCollision(t, env)
	quote := seedQ100(t, env, entity.QuoteStatusSent)

	res, err := env.svc.Conversion.ConvertFromSignature(context.Background(), SignatureCompletion{
		EnvelopeID: "env-5", QuoteID: quote.ID, Status: SignatureStatusCompleted,
	}, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.False(t, errors.Is(err, ErrAlreadyConverted))
	assert.Equal(t, []string{"env-5"}, deduper.forgotten)
	assert.Equal(t, int64(1), env.count(t, &entity.Project{}))
}

func TestConvertFromSignatureIgnoresIncompleteEnvelopes(t *testing.T) {
	env := newTestEnv(t)
	quote := seedQ100(t, env, entity.QuoteStatusSent)

	res, err := env.svc.Conversion.ConvertFromSignature(context.Background(), SignatureCompletion{
		EnvelopeID: "env-4", QuoteID: quote.ID, Status: "declined",
	}, nil)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, int64(0), env.count(t, &entity.Project{}))

	_, err = env.svc.Conversion.ConvertFromSignature(context.Background(), SignatureCompletion{Status: SignatureStatusCompleted}, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestConvertFromSignatureFallsBackWhenDedupIsDown(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Conversion.SetDeduper(&fakeDeduper{err: errors.New("redis down")})
	quote := seedQ100(t, env, entity.QuoteStatusApproved)

	res, err := env.svc.Conversion.ConvertFromSignature(context.Background(), SignatureCompletion{
		EnvelopeID: "env-5", QuoteID: quote.ID, Status: SignatureStatusCompleted,
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Project)
}
