package apiutil

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/booster"
	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/chain"
)

// SendDomainError maps domain sentinel errors onto HTTP responses. Anything
// unrecognized becomes a 500 with a generic message so internals never leak.
func SendDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chain.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return SendNotFound(c, err.Error())
	case errors.Is(err, chain.ErrUnauthorized), errors.Is(err, chain.ErrNotOwner):
		return SendForbidden(c, err.Error())
	case errors.Is(err, chain.ErrInsufficientPayment), errors.Is(err, chain.ErrWrongPayment):
		return SendPaymentRequired(c, err.Error())
	case errors.Is(err, chain.ErrAlreadyRedeemed),
		errors.Is(err, chain.ErrAlreadyListed),
		errors.Is(err, chain.ErrListingInactive),
		errors.Is(err, chain.ErrUserExists),
		errors.Is(err, chain.ErrCollectionFull):
		return SendConflict(c, err.Error(), nil)
	case errors.Is(err, chain.ErrNotApproved),
		errors.Is(err, chain.ErrEmptyBooster),
		errors.Is(err, chain.ErrUnknownCard),
		errors.Is(err, booster.ErrInsufficientCards):
		return SendBadRequest(c, err.Error(), nil)
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		return SendBadGateway(c, "card catalog upstream is unavailable")
	default:
		return SendInternalServerError(c, "internal server error")
	}
}
