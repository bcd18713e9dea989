package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Collection is a capacity-bounded named group of minted cards. Capacity is
// fixed at creation and never changes.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Capacity  int       `bun:"capacity,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Cards []*Card `bun:"rel:has-many,join:id=collection_id"`
}
