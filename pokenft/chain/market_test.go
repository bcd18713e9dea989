package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketAddr = "0xmarketplace"

// mintFor sets up a ledger-backed store with one card owned by the given
// address and returns the market over the same store.
func newTestMarket(t *testing.T, owner string) (*Market, *Ledger, int64) {
	t.Helper()
	store := NewMemoryStore()
	ledger := NewLedger(store, Params{Operator: operator}, nil)
	market := NewMarket(store, marketAddr)
	ctx := context.Background()

	col, err := ledger.CreateCollection(ctx, Caller{Address: operator}, "Base Set", 10)
	require.NoError(t, err)

	card, err := ledger.MintAndAssignCard(ctx, Caller{Address: operator}, col.ID, owner, CardInput{
		CardNumber:   1,
		SourceCardID: "base1-1",
		ImageURI:     "https://img.example/base1-1.png",
	})
	require.NoError(t, err)

	return market, ledger, card.TokenID
}

func TestListCardRequiresApproval(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	_, err := market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))

	listing, err := market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), listing.Price)
	assert.True(t, listing.Active)
}

func TestListCardOwnerAndPriceChecks(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))

	_, err := market.ListCard(ctx, Caller{Address: bob}, tokenID, 100)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = market.ListCard(ctx, Caller{Address: alice}, tokenID, 0)
	assert.Error(t, err)

	_, err = market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)

	_, err = market.ListCard(ctx, Caller{Address: alice}, tokenID, 200)
	assert.ErrorIs(t, err, ErrAlreadyListed)
}

func TestBuyCardExactPayment(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))
	_, err := market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)

	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 99}, tokenID)
	assert.ErrorIs(t, err, ErrWrongPayment)

	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 101}, tokenID)
	assert.ErrorIs(t, err, ErrWrongPayment)

	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 100}, tokenID)
	require.NoError(t, err)

	meta, err := ledger.GetCardMetadata(ctx, tokenID)
	require.NoError(t, err)
	assert.Equal(t, bob, meta.OwnerAddress)

	// The listing is consumed; a second purchase fails.
	_, err = market.BuyCard(ctx, Caller{Address: alice, Value: 100}, tokenID)
	assert.ErrorIs(t, err, ErrListingInactive)

	active, err := market.GetActiveListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestBuyCardCreditsRegisteredSeller(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	_, err := ledger.RegisterUser(ctx, Caller{Address: alice}, "ash")
	require.NoError(t, err)

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))
	_, err = market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)

	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 100}, tokenID)
	require.NoError(t, err)

	users, err := ledger.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(100), users[0].Balance)
}

func TestCancelListingSellerOnly(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))
	_, err := market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)

	err = market.CancelListing(ctx, Caller{Address: bob}, tokenID)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, market.CancelListing(ctx, Caller{Address: alice}, tokenID))

	active, err := market.GetActiveListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// A cancelled listing cannot be bought.
	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 100}, tokenID)
	assert.ErrorIs(t, err, ErrListingInactive)
}

func TestRelistAfterPurchase(t *testing.T) {
	market, ledger, tokenID := newTestMarket(t, alice)
	ctx := context.Background()

	require.NoError(t, ledger.Approve(ctx, Caller{Address: alice}, tokenID, marketAddr))
	_, err := market.ListCard(ctx, Caller{Address: alice}, tokenID, 100)
	require.NoError(t, err)
	_, err = market.BuyCard(ctx, Caller{Address: bob, Value: 100}, tokenID)
	require.NoError(t, err)

	// Approval was cleared by the transfer; the new owner must approve
	// again before relisting.
	_, err = market.ListCard(ctx, Caller{Address: bob}, tokenID, 250)
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, ledger.Approve(ctx, Caller{Address: bob}, tokenID, marketAddr))
	listing, err := market.ListCard(ctx, Caller{Address: bob}, tokenID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), listing.Price)
	assert.Equal(t, bob, listing.SellerAddress)
}
