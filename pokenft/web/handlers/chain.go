package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// RegisterUser records the caller's wallet with a display name.
func (app *WebApp) RegisterUser(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}
	if body.Username == "" {
		return apiutil.SendBadRequest(c, "username is required", nil)
	}

	user, err := app.Ledger.RegisterUser(c.Context(), chain.Caller{Address: address}, body.Username)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendCreated(c, user, "User registered")
}

// GetAllUsers lists every registered user.
func (app *WebApp) GetAllUsers(c *fiber.Ctx) error {
	users, err := app.Ledger.GetAllUsers(c.Context())
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, users, "")
}

// GetAllCollections lists every collection.
func (app *WebApp) GetAllCollections(c *fiber.Ctx) error {
	collections, err := app.Ledger.GetAllCollections(c.Context())
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, collections, "")
}

// CreateCollection creates an empty collection with a fixed capacity. Only
// the operator may call this.
func (app *WebApp) CreateCollection(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}

	caller := chain.Caller{Address: app.Config.Chain.OperatorAddress}
	col, err := app.Ledger.CreateCollection(c.Context(), caller, body.Name, body.Capacity)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendCreated(c, col, "Collection created")
}

// GetPlayerNFTs returns the token ids owned by a wallet, in mint order.
func (app *WebApp) GetPlayerNFTs(c *fiber.Ctx) error {
	tokens, err := app.Ledger.GetNFTsByPlayer(c.Context(), c.Params("address"))
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, tokens, "")
}

// GetCardMetadata returns the on-chain metadata of a minted token.
func (app *WebApp) GetCardMetadata(c *fiber.Ctx) error {
	tokenID, err := parseInt64(c.Params("tokenId"))
	if err != nil {
		return apiutil.SendBadRequest(c, "tokenId must be an integer", nil)
	}

	meta, err := app.Ledger.GetCardMetadata(c.Context(), tokenID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, meta, "")
}

// GetCardCollection returns the collection a minted token belongs to.
func (app *WebApp) GetCardCollection(c *fiber.Ctx) error {
	tokenID, err := parseInt64(c.Params("tokenId"))
	if err != nil {
		return apiutil.SendBadRequest(c, "tokenId must be an integer", nil)
	}

	col, err := app.Ledger.GetCollectionByCardID(c.Context(), tokenID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, col, "")
}

// ApproveCard approves an operator for a token, defaulting to the
// marketplace so the owner can list it.
func (app *WebApp) ApproveCard(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	tokenID, err := parseInt64(c.Params("tokenId"))
	if err != nil {
		return apiutil.SendBadRequest(c, "tokenId must be an integer", nil)
	}

	var body struct {
		Operator string `json:"operator"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}
	operator := body.Operator
	if operator == "" {
		operator = app.Market.Address()
	}

	if err := app.Ledger.Approve(c.Context(), chain.Caller{Address: address}, tokenID, operator); err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, fiber.Map{"tokenId": tokenID, "operator": operator}, "Approval set")
}

// CreateBooster assigns a new unopened booster to a player. Operator only;
// the attached value must cover the booster fee.
func (app *WebApp) CreateBooster(c *fiber.Ctx) error {
	var body struct {
		Owner          string   `json:"owner"`
		CardIDs        []string `json:"cardIds"`
		CollectionName string   `json:"collectionName"`
		Value          int64    `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}
	if body.Owner == "" {
		return apiutil.SendBadRequest(c, "owner is required", nil)
	}

	caller := chain.Caller{Address: app.Config.Chain.OperatorAddress, Value: body.Value}
	bst, err := app.Ledger.CreateBoosterForPlayer(c.Context(), caller, body.Owner, body.CardIDs, body.CollectionName)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendCreated(c, bst, "Booster created")
}

// GetAllBoosters lists every booster ever created.
func (app *WebApp) GetAllBoosters(c *fiber.Ctx) error {
	boosters, err := app.Ledger.GetAllBoosters(c.Context())
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, boosters, "")
}

// GetPlayerBoosters returns a player's unredeemed boosters as parallel id
// and collection-name lists.
func (app *WebApp) GetPlayerBoosters(c *fiber.Ctx) error {
	boosters, err := app.Ledger.GetBoosterByUser(c.Context(), c.Params("address"))
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}

	ids := make([]int64, len(boosters))
	names := make([]string, len(boosters))
	for i, b := range boosters {
		ids[i] = b.ID
		names[i] = b.CollectionName
	}
	return apiutil.SendSuccess(c, fiber.Map{
		"boosterIds":      ids,
		"collectionNames": names,
	}, "")
}

// GetBoosterCards returns the card ids sealed inside a booster.
func (app *WebApp) GetBoosterCards(c *fiber.Ctx) error {
	boosterID, err := parseInt64(c.Params("id"))
	if err != nil {
		return apiutil.SendBadRequest(c, "booster id must be an integer", nil)
	}

	cardIDs, err := app.Ledger.GetBoosterCards(c.Context(), boosterID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, cardIDs, "")
}

// RedeemBooster opens a booster: its cards are resolved against the catalog,
// minted into a fresh collection and assigned to the caller, and the booster
// is consumed. The attached value must cover the redemption fee.
func (app *WebApp) RedeemBooster(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	boosterID, err := parseInt64(c.Params("id"))
	if err != nil {
		return apiutil.SendBadRequest(c, "booster id must be an integer", nil)
	}

	var body struct {
		CollectionName string `json:"collectionName"`
		Value          int64  `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}

	cardIDs, err := app.Ledger.GetBoosterCards(c.Context(), boosterID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}

	inputs, err := app.prepareCardInputs(c, cardIDs)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}

	collectionName := body.CollectionName
	caller := chain.Caller{Address: address, Value: body.Value}
	col, minted, err := app.Ledger.RedeemBoosterAndCreateCollection(c.Context(), caller, boosterID, collectionName, inputs)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}

	tokens := make([]int64, len(minted))
	for i, card := range minted {
		tokens[i] = card.TokenID
	}
	return apiutil.SendSuccess(c, fiber.Map{
		"collection": col,
		"tokenIds":   tokens,
	}, "Booster redeemed")
}

// prepareCardInputs resolves catalog records for the booster's card ids
// concurrently and mirrors their images, preserving booster order.
func (app *WebApp) prepareCardInputs(c *fiber.Ctx, cardIDs []string) ([]chain.CardInput, error) {
	inputs := make([]chain.CardInput, len(cardIDs))

	g, gctx := errgroup.WithContext(c.Context())
	g.SetLimit(5)
	for i, id := range cardIDs {
		g.Go(func() error {
			rec, err := app.Catalog.Card(gctx, id)
			if err != nil {
				return err
			}

			imageURI := rec.ImageURI()
			if app.Spaces != nil {
				imageURI = app.Spaces.MirrorCardImage(gctx, rec.ID, imageURI)
			}

			inputs[i] = chain.CardInput{
				CardNumber:   cardNumber(rec.Number, i),
				SourceCardID: rec.ID,
				ImageURI:     imageURI,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// cardNumber extracts the leading digits of a printed card number like
// "4" or "25a", falling back to the booster position.
func cardNumber(printed string, position int) int {
	digits := printed
	if i := strings.IndexFunc(printed, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = printed[:i]
	}
	if n, err := strconv.Atoi(digits); err == nil {
		return n
	}
	return position + 1
}
