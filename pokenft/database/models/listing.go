package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Listing is a marketplace offer to sell one token at a fixed price. The
// price is set once; the listing ends by purchase or seller cancellation.
type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	TokenID       int64     `bun:"token_id,pk"`
	SellerAddress string    `bun:"seller_address,notnull"`
	Price         int64     `bun:"price,notnull"`
	Active        bool      `bun:"active,notnull,default:true"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}
