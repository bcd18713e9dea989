package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokenft/pokenft/pokenft"
	"github.com/pokenft/pokenft/pokenft/auth"
	"github.com/pokenft/pokenft/pokenft/booster"
	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/pokenft/pokenft/pokenft/web/handlers"
)

const (
	adminSecret = "test-secret"
	operator    = "0xoperator"
	marketAddr  = "0xmarketplace"
	alice       = "0xalice"
	bob         = "0xbob"
	fee         = int64(10_000_000_000_000_000)
)

type testEnv struct {
	app    *fiber.App
	ledger *chain.Ledger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/cards/") {
			cardID := strings.TrimPrefix(r.URL.Path, "/cards/")
			card := models.CardRecord{ID: cardID, Name: "Card", Number: "1"}
			json.NewEncoder(w).Encode(map[string]models.CardRecord{"data": card})
			return
		}
		setID := strings.TrimPrefix(r.URL.Query().Get("q"), "set.id:")
		cards := make([]models.CardRecord, 12)
		for i := range cards {
			cards[i] = models.CardRecord{
				ID:     fmt.Sprintf("%s-%d", setID, i+1),
				Name:   fmt.Sprintf("Card %d", i+1),
				Number: fmt.Sprintf("%d", i+1),
			}
			cards[i].Set.ID = setID
			cards[i].Set.Name = "Test Set"
		}
		json.NewEncoder(w).Encode(map[string][]models.CardRecord{"data": cards})
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	setsPath := filepath.Join(dir, "sets.json")
	require.NoError(t, os.WriteFile(setsPath, []byte(`{"data":[
		{"id":"base1","name":"Base"},
		{"id":"base2","name":"Jungle"}
	]}`), 0o644))
	sets, err := catalog.LoadSetList(setsPath)
	require.NoError(t, err)

	client := catalog.NewClient(upstream.URL, "", 250)
	catalogStore, err := catalog.NewStore(client, catalog.NewFileStore(filepath.Join(dir, "cards.json")), sets)
	require.NoError(t, err)

	store := chain.NewMemoryStore()
	ledger := chain.NewLedger(store, chain.Params{
		Operator:      operator,
		BoosterFee:    fee,
		RedemptionFee: fee,
	}, catalogStore)
	market := chain.NewMarket(store, marketAddr)

	cfg := &pokenft.Config{}
	cfg.Chain.OperatorAddress = operator
	cfg.Chain.MarketAddress = marketAddr
	cfg.Booster.CardsPerBooster = 5

	webApp := &handlers.WebApp{
		Config:    cfg,
		Catalog:   catalogStore,
		Generator: booster.NewGenerator(catalogStore, 5),
		Ledger:    ledger,
		Market:    market,
		Auth:      auth.NewAdminSecret(adminSecret),
		Version:   "test",
	}

	return &testEnv{app: NewApp(webApp, "*"), ledger: ledger}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, opts ...func(*http.Request)) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	res, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return res, decoded
}

func asAdmin(req *http.Request) {
	cred := base64.StdEncoding.EncodeToString([]byte("admin:" + adminSecret))
	req.Header.Set("Authorization", "Basic "+cred)
}

func asWallet(address string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("X-Wallet-Address", address)
	}
}

func TestAdminRoutesRejectBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.request(t, http.MethodGet, "/api/cards/base1", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = env.request(t, http.MethodGet, "/api/cards/base1", nil, func(req *http.Request) {
		cred := base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
		req.Header.Set("Authorization", "Basic "+cred)
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := env.request(t, http.MethodGet, "/api/cards/base1", nil, asAdmin)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestGetAllSetsIsPublic(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.request(t, http.MethodGet, "/api/cards/sets/getAllSets", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["data"], 2)
}

func TestGenerateBoosterRoute(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.request(t, http.MethodGet, "/api/booster/generate/base1/5/My%20Pack", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "My Pack", data["name"])
	assert.Equal(t, "base1", data["setId"])
	assert.Len(t, data["cardIds"], 5)
}

func TestGenerateBoosterTooManyCards(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.request(t, http.MethodGet, "/api/booster/generate/base1/99/Big", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGenerateBoosterUnknownSet(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.request(t, http.MethodGet, "/api/booster/generate/neverland/5/Pack", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRegisterUserRoute(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.request(t, http.MethodPost, "/api/chain/users", fiber.Map{"username": "ash"}, asWallet(alice))
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	// Missing wallet header.
	res, _ = env.request(t, http.MethodPost, "/api/chain/users", fiber.Map{"username": "ash"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Duplicate registration.
	res, _ = env.request(t, http.MethodPost, "/api/chain/users", fiber.Map{"username": "ash"}, asWallet(alice))
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, body := env.request(t, http.MethodGet, "/api/chain/users", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestBoosterLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	// Admin assigns a booster to alice.
	res, body := env.request(t, http.MethodPost, "/api/chain/boosters", fiber.Map{
		"owner":          alice,
		"cardIds":        []string{"base1-1", "base1-2", "base1-3"},
		"collectionName": "Base Pack",
		"value":          fee,
	}, asAdmin)
	require.Equal(t, http.StatusCreated, res.StatusCode, "body: %v", body)

	data := body["data"].(map[string]any)
	boosterID := int64(data["id"].(float64))

	// Without admin credentials booster creation is rejected.
	res, _ = env.request(t, http.MethodPost, "/api/chain/boosters", fiber.Map{"owner": alice})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Alice sees her unopened booster.
	res, body = env.request(t, http.MethodGet, "/api/chain/boosters/user/"+alice, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	listing := body["data"].(map[string]any)
	assert.Len(t, listing["boosterIds"], 1)
	assert.Equal(t, []any{"Base Pack"}, listing["collectionNames"])

	// Redeem it.
	path := fmt.Sprintf("/api/chain/boosters/%d/redeem", boosterID)
	res, body = env.request(t, http.MethodPost, path, fiber.Map{
		"collectionName": "Base Pack Opened",
		"value":          fee,
	}, asWallet(alice))
	require.Equal(t, http.StatusOK, res.StatusCode, "body: %v", body)

	redeemed := body["data"].(map[string]any)
	assert.Len(t, redeemed["tokenIds"], 3)

	// Redeeming twice conflicts.
	res, _ = env.request(t, http.MethodPost, path, fiber.Map{
		"collectionName": "Again",
		"value":          fee,
	}, asWallet(alice))
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// Alice now owns three tokens.
	res, body = env.request(t, http.MethodGet, "/api/chain/players/"+alice+"/nfts", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["data"], 3)
}

func TestMarketplaceOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	// Seed a card for alice directly through the ledger.
	col, err := env.ledger.CreateCollection(httptest.NewRequest("GET", "/", nil).Context(),
		chain.Caller{Address: operator}, "Base", 5)
	require.NoError(t, err)
	card, err := env.ledger.MintAndAssignCard(httptest.NewRequest("GET", "/", nil).Context(),
		chain.Caller{Address: operator}, col.ID, alice, chain.CardInput{CardNumber: 1, SourceCardID: "base1-1"})
	require.NoError(t, err)

	tokenPath := fmt.Sprintf("/api/chain/cards/%d/approve", card.TokenID)
	res, _ := env.request(t, http.MethodPost, tokenPath, fiber.Map{}, asWallet(alice))
	require.Equal(t, http.StatusOK, res.StatusCode)

	// List it.
	res, _ = env.request(t, http.MethodPost, "/api/market/listings", fiber.Map{
		"tokenId": card.TokenID,
		"price":   1000,
	}, asWallet(alice))
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, body := env.request(t, http.MethodGet, "/api/market/listings", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["data"], 1)

	// Wrong payment is rejected.
	buyPath := fmt.Sprintf("/api/market/listings/%d/buy", card.TokenID)
	res, _ = env.request(t, http.MethodPost, buyPath, fiber.Map{"value": 999}, asWallet(bob))
	assert.Equal(t, http.StatusPaymentRequired, res.StatusCode)

	// Exact payment transfers ownership.
	res, _ = env.request(t, http.MethodPost, buyPath, fiber.Map{"value": 1000}, asWallet(bob))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body = env.request(t, http.MethodGet, fmt.Sprintf("/api/chain/cards/%d", card.TokenID), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	meta := body["data"].(map[string]any)
	assert.Equal(t, bob, meta["ownerAddress"])

	res, body = env.request(t, http.MethodGet, "/api/market/listings", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, body["data"])
}

func TestCancelListingOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	ctx := httptest.NewRequest("GET", "/", nil).Context()
	col, err := env.ledger.CreateCollection(ctx, chain.Caller{Address: operator}, "Base", 5)
	require.NoError(t, err)
	card, err := env.ledger.MintAndAssignCard(ctx, chain.Caller{Address: operator}, col.ID, alice,
		chain.CardInput{CardNumber: 1, SourceCardID: "base1-1"})
	require.NoError(t, err)
	require.NoError(t, env.ledger.Approve(ctx, chain.Caller{Address: alice}, card.TokenID, marketAddr))

	res, _ := env.request(t, http.MethodPost, "/api/market/listings", fiber.Map{
		"tokenId": card.TokenID,
		"price":   500,
	}, asWallet(alice))
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// Only the seller can cancel.
	cancelPath := fmt.Sprintf("/api/market/listings/%d", card.TokenID)
	res, _ = env.request(t, http.MethodDelete, cancelPath, nil, asWallet(bob))
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = env.request(t, http.MethodDelete, cancelPath, nil, asWallet(alice))
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestUnknownRouteReturns404(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.request(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
