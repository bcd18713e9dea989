package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booster is a bundle of pre-selected catalog card references awaiting
// redemption into a collection. The card list is fixed at creation; the
// redeemed flag flips one way.
type Booster struct {
	bun.BaseModel `bun:"table:boosters,alias:b"`

	ID             int64     `bun:"id,pk,autoincrement"`
	CollectionName string    `bun:"collection_name,notnull"`
	CardIDs        []string  `bun:"card_ids,type:jsonb,notnull"`
	OwnerAddress   string    `bun:"owner_address"`
	Redeemed       bool      `bun:"redeemed,notnull,default:false"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

type BoosterState int

const (
	BoosterStateCreated BoosterState = iota
	BoosterStateAssigned
	BoosterStateRedeemed
)

func (b *Booster) State() BoosterState {
	switch {
	case b.Redeemed:
		return BoosterStateRedeemed
	case b.OwnerAddress != "":
		return BoosterStateAssigned
	default:
		return BoosterStateCreated
	}
}
