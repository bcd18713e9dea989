package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card is a minted token. Token IDs are assigned sequentially by the ledger,
// starting at 1. Cards are created exactly once and never destroyed; only the
// owner address changes, via transfer or marketplace purchase.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	TokenID      int64  `bun:"token_id,pk"`
	CollectionID int64  `bun:"collection_id,notnull"`
	CardNumber   int    `bun:"card_number,notnull"`
	SourceCardID string `bun:"source_card_id,notnull"`
	ImageURI     string `bun:"image_uri"`
	OwnerAddress string `bun:"owner_address,notnull"`
	// ApprovedAddress is the operator allowed to transfer this token on the
	// owner's behalf. Cleared on every transfer.
	ApprovedAddress string    `bun:"approved_address"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// CardMetadata is the read view returned by the ledger's metadata queries.
type CardMetadata struct {
	TokenID      int64  `json:"tokenId"`
	CollectionID int64  `json:"collectionId"`
	CardNumber   int    `json:"cardNumber"`
	SourceCardID string `json:"sourceCardId"`
	ImageURI     string `json:"imageUri"`
	OwnerAddress string `json:"ownerAddress"`
}

func (c *Card) Metadata() CardMetadata {
	return CardMetadata{
		TokenID:      c.TokenID,
		CollectionID: c.CollectionID,
		CardNumber:   c.CardNumber,
		SourceCardID: c.SourceCardID,
		ImageURI:     c.ImageURI,
		OwnerAddress: c.OwnerAddress,
	}
}
