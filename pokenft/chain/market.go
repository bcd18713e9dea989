package chain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// Market implements the escrow-free marketplace contract. Sellers keep their
// token until purchase; the market only needs transfer approval. Proceeds
// are credited to the seller's balance on sale.
type Market struct {
	mu      sync.Mutex
	store   Store
	address string
}

// NewMarket creates the market bound to its contract address. Approvals are
// checked against that address.
func NewMarket(store Store, address string) *Market {
	return &Market{store: store, address: address}
}

// Address returns the market contract address players must approve.
func (m *Market) Address() string {
	return m.address
}

// ListCard puts a token up for sale at a fixed price. The caller must own
// the token and must have approved the market beforehand.
func (m *Market) ListCard(ctx context.Context, caller Caller, tokenID int64, price int64) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	card, err := m.store.Card(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("token %d: %w", tokenID, ErrNotFound)
	}
	if card.OwnerAddress != caller.Address {
		return nil, ErrNotOwner
	}
	if card.ApprovedAddress != m.address {
		return nil, ErrNotApproved
	}
	if price <= 0 {
		return nil, fmt.Errorf("listing price must be positive, got %d", price)
	}
	if existing, err := m.store.Listing(ctx, tokenID); err == nil && existing != nil && existing.Active {
		return nil, ErrAlreadyListed
	}

	listing := &models.Listing{
		TokenID:       tokenID,
		SellerAddress: caller.Address,
		Price:         price,
		Active:        true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := m.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	slog.Info("Card listed",
		slog.String("type", "chain"),
		slog.Int64("token_id", tokenID),
		slog.String("seller", caller.Address),
		slog.Int64("price", price))
	return listing, nil
}

// BuyCard purchases a listed token. Payment must equal the price exactly; no
// change is made. On success the token transfers to the buyer, the seller is
// credited, and the listing deactivates, all atomically.
func (m *Market) BuyCard(ctx context.Context, caller Caller, tokenID int64) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.store.Listing(ctx, tokenID)
	if err != nil || listing == nil {
		return nil, fmt.Errorf("listing for token %d: %w", tokenID, ErrNotFound)
	}
	if !listing.Active {
		return nil, ErrListingInactive
	}
	if caller.Value != listing.Price {
		return nil, ErrWrongPayment
	}

	err = m.store.RunInTx(ctx, func(ctx context.Context, s Store) error {
		if err := s.TransferCard(ctx, tokenID, caller.Address); err != nil {
			return fmt.Errorf("failed to transfer token: %w", err)
		}
		if err := s.CreditBalance(ctx, listing.SellerAddress, listing.Price); err != nil {
			return fmt.Errorf("failed to pay seller: %w", err)
		}
		if err := s.DeactivateListing(ctx, tokenID); err != nil {
			return fmt.Errorf("failed to close listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Card sold",
		slog.String("type", "chain"),
		slog.Int64("token_id", tokenID),
		slog.String("seller", listing.SellerAddress),
		slog.String("buyer", caller.Address),
		slog.Int64("price", listing.Price))
	listing.Active = false
	return listing, nil
}

// CancelListing deactivates a listing without transferring anything. Seller
// only.
func (m *Market) CancelListing(ctx context.Context, caller Caller, tokenID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.store.Listing(ctx, tokenID)
	if err != nil || listing == nil {
		return fmt.Errorf("listing for token %d: %w", tokenID, ErrNotFound)
	}
	if !listing.Active {
		return ErrListingInactive
	}
	if listing.SellerAddress != caller.Address {
		return ErrNotOwner
	}

	if err := m.store.DeactivateListing(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to cancel listing: %w", err)
	}

	slog.Info("Listing cancelled",
		slog.String("type", "chain"),
		slog.Int64("token_id", tokenID),
		slog.String("seller", caller.Address))
	return nil
}

func (m *Market) GetActiveListings(ctx context.Context) ([]*models.Listing, error) {
	return m.store.ActiveListings(ctx)
}
