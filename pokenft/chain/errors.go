package chain

import "errors"

// Revert reasons. These surface verbatim to API clients the way contract
// reverts would, so the strings stay short and stable.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("caller is not the contract operator")
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrNotApproved         = errors.New("market is not approved to transfer this token")
	ErrAlreadyRedeemed     = errors.New("booster already redeemed")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrWrongPayment        = errors.New("payment must match the listing price exactly")
	ErrListingInactive     = errors.New("listing is not active")
	ErrAlreadyListed       = errors.New("token already has an active listing")
	ErrCollectionFull      = errors.New("collection is at capacity")
	ErrEmptyBooster        = errors.New("booster requires at least one card")
	ErrUserExists          = errors.New("user already registered")
	ErrUnknownCard         = errors.New("card id does not resolve to a catalog record")
)
