package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a registered player wallet. Balance is the amount credited from
// marketplace sales, in the smallest currency unit.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Address   string    `bun:"address,pk"`
	Username  string    `bun:"username,notnull"`
	Balance   int64     `bun:"balance,notnull,default:0"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
