package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	owner = Identity{OwnerID: "u-1"}
	other = Identity{OwnerID: "u-2"}
	admin = Identity{OwnerID: "admin", Privileged: true}
)

func newTestService(t *testing.T) (*Service, *memStore, *memCatalog) {
	store, cat := newMemStore(), newMemCatalog()
	svc := NewService(zaptest.NewLogger(t), store, cat, memUsers{"u-1": "tyler", "u-2": "sam"})
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC) }
	return svc, store, cat
}

func TestCreateBet_GetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := spreadPayload()
	created, err := svc.CreateBet(ctx, owner, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.GetBet(ctx, owner, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, owner.OwnerID, got.OwnerID)
	assert.Equal(t, in.SportsbookID, got.SportsbookID)
	assert.Equal(t, in.TeamID, got.TeamID)
	assert.Equal(t, in.BetTypeID, got.BetTypeID)
	assert.Equal(t, in.ResultID, got.ResultID)
	assert.Equal(t, -110, got.Odds)
	assert.True(t, in.AmountWagered.Equal(got.AmountWagered))
	assert.True(t, in.Line.Equal(*got.Line))
	assert.Equal(t, *in.DatePlaced, got.DatePlaced)
	assert.Equal(t, "-4.5", got.Description)
	assert.Equal(t, "190.91", got.AmountWon.StringFixed(2))
}

func TestCreateBet_DefaultsDateToToday(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := spreadPayload()
	p.DatePlaced = nil

	b, err := svc.CreateBet(context.Background(), owner, p)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), b.DatePlaced)
	assert.Nil(t, p.DatePlaced, "caller payload untouched")
}

func TestCreateBet_IgnoresClientAmountWon(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := spreadPayload()
	p.ResultID = resLoss
	p.AmountWon = decPtr("5000")

	b, err := svc.CreateBet(context.Background(), owner, p)
	require.NoError(t, err)
	assert.True(t, b.AmountWon.IsZero())
}

func TestCreateBet_ValidationBlocksPersistence(t *testing.T) {
	svc, store, _ := newTestService(t)

	p := spreadPayload()
	p.Odds = decPtr("-100")
	p.TeamID = "team-missing"

	_, err := svc.CreateBet(context.Background(), owner, p)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	got := fieldsOf(verr)
	assert.Contains(t, got, "odds")
	assert.Equal(t, "unknown team", got["teamId"])
	assert.Empty(t, store.bets)
}

func TestCreateBet_OutOfRangeValuesAreRejected(t *testing.T) {
	svc, store, _ := newTestService(t)

	p := spreadPayload()
	p.Odds = decPtr("18446744073709551716")
	p.AmountWagered = decPtr("10000000000")
	p.Line = decPtr("-100000.5")

	_, err := svc.CreateBet(context.Background(), owner, p)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	got := fieldsOf(verr)
	assert.Equal(t, "is out of range", got["odds"])
	assert.Contains(t, got, "amountWagered")
	assert.Contains(t, got, "line")
	assert.Empty(t, store.bets)
}

func TestCreateBet_NegativeOverUnderLine(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := spreadPayload()
	p.BetTypeID, p.Line, p.Side = typeOU, decPtr("-9.5"), SideUnder

	b, err := svc.CreateBet(ctx, owner, p)
	require.NoError(t, err)
	assert.Equal(t, "Under -9.5", b.Description)
	assert.Equal(t, "190.91", b.AmountWon.StringFixed(2))

	got, err := svc.GetBet(ctx, owner, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Line)
	assert.Equal(t, "-9.5", got.Line.StringFixed(1))
}

func TestCreateBet_OverUnderAndMoneyline(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ou := spreadPayload()
	ou.BetTypeID, ou.Line, ou.Side, ou.ResultID = typeOU, decPtr("45.5"), SideUnder, resPush

	b, err := svc.CreateBet(ctx, owner, ou)
	require.NoError(t, err)
	assert.Equal(t, "Under 45.5", b.Description)
	assert.Equal(t, "100.00", b.AmountWon.StringFixed(2))

	ml := spreadPayload()
	ml.BetTypeID, ml.Odds = typeML, decPtr("150")

	b, err = svc.CreateBet(ctx, owner, ml)
	require.NoError(t, err)
	assert.Equal(t, MoneylineMarker, b.Description)
	assert.Nil(t, b.Line, "moneyline carries no line")
	assert.Equal(t, "250.00", b.AmountWon.StringFixed(2))
}

func TestCreateBet_StoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.failErr = errDown

	_, err := svc.CreateBet(context.Background(), owner, spreadPayload())

	var sf *StoreFailure
	require.True(t, errors.As(err, &sf))
	assert.Equal(t, "create", sf.Op)
}

func TestGetBet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBet(ctx, owner, spreadPayload())
	require.NoError(t, err)

	_, err = svc.GetBet(ctx, other, b.ID)
	assert.ErrorIs(t, err, ErrNotFound, "other owners cannot see the bet")

	got, err := svc.GetBet(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.GetBet(ctx, owner, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBet_ParsesLegacyDescription(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.bets["legacy"] = BetRecord{ID: "legacy", OwnerID: "u-1", BetTypeID: typeOU, Description: "Over 51.5"}

	got, err := svc.GetBet(context.Background(), owner, "legacy")
	require.NoError(t, err)
	require.NotNil(t, got.Line)
	assert.Equal(t, "51.5", got.Line.String())
	assert.Equal(t, SideOver, got.Side)
}

func TestUpdateBet_ResettlesOnResultChange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := spreadPayload()
	p.ResultID = resPending
	b, err := svc.CreateBet(ctx, owner, p)
	require.NoError(t, err)
	assert.True(t, b.AmountWon.IsZero())

	updated, err := svc.UpdateBet(ctx, owner, b.ID, BetPayload{ResultID: resWin})
	require.NoError(t, err)
	assert.Equal(t, "190.91", updated.AmountWon.StringFixed(2))
	assert.Equal(t, "-4.5", updated.Description)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)

	updated, err = svc.UpdateBet(ctx, owner, b.ID, BetPayload{Line: decPtr("3.5"), Odds: decPtr("150"), AmountWagered: decPtr("40")})
	require.NoError(t, err)
	assert.Equal(t, "+3.5", updated.Description)
	assert.Equal(t, "100.00", updated.AmountWon.StringFixed(2))

	got, err := svc.GetBet(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.AmountWon, got.AmountWon)
}

func TestUpdateBet_Immutables(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBet(ctx, owner, spreadPayload())
	require.NoError(t, err)

	_, err = svc.UpdateBet(ctx, owner, b.ID, BetPayload{SportsbookID: sbBetMGM, BetTypeID: typeSpread})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	got := fieldsOf(verr)
	assert.Contains(t, got, "sportsbookId")
	assert.NotContains(t, got, "betTypeId", "same value is not a change")
}

func TestUpdateBet_Revalidates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBet(ctx, owner, spreadPayload())
	require.NoError(t, err)

	_, err = svc.UpdateBet(ctx, owner, b.ID, BetPayload{Line: decPtr("4.0")})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, fieldsOf(verr), "line")
}

func TestUpdateBet_Ownership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBet(ctx, owner, spreadPayload())
	require.NoError(t, err)

	_, err = svc.UpdateBet(ctx, other, b.ID, BetPayload{ResultID: resLoss})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateBet(ctx, admin, b.ID, BetPayload{ResultID: resLoss})
	assert.NoError(t, err)

	_, err = svc.UpdateBet(ctx, owner, "nope", BetPayload{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBet(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBet(ctx, owner, spreadPayload())
	require.NoError(t, err)

	_, err = svc.DeleteBet(ctx, other, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := svc.DeleteBet(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)
	assert.Empty(t, store.bets)

	_, err = svc.DeleteBet(ctx, owner, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, sb := range []string{sbDraftKings, sbBetMGM, sbDraftKings} {
		p := spreadPayload()
		p.SportsbookID = sb
		_, err := svc.CreateBet(ctx, owner, p)
		require.NoError(t, err)
	}
	_, err := svc.CreateBet(ctx, other, spreadPayload())
	require.NoError(t, err)

	rows, err := svc.ListBets(ctx, owner, Filters{OwnerID: "u-2"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "BetMGM", *rows[0].SportsbookName)
	assert.Equal(t, "DraftKings", *rows[1].SportsbookName)
	for _, r := range rows {
		assert.Equal(t, "u-1", r.OwnerID)
		assert.Nil(t, r.Username)
	}

	all, err := svc.ListBets(ctx, admin, Filters{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for _, r := range all {
		require.NotNil(t, r.Username)
	}

	filtered, err := svc.ListBets(ctx, admin, Filters{SportsbookID: sbBetMGM})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

func TestListCatalog(t *testing.T) {
	svc, _, cat := newTestService(t)
	ctx := context.Background()

	entries, err := svc.ListCatalog(ctx, KindSportsbook)
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{{ID: sbBetMGM, Label: "BetMGM"}, {ID: sbDraftKings, Label: "DraftKings"}}, entries)

	_, err = svc.ListCatalog(ctx, CatalogKind("league"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	cat.failErr = errDown
	_, err = svc.ListCatalog(ctx, KindTeam)
	var sf *StoreFailure
	assert.True(t, errors.As(err, &sf))
}
