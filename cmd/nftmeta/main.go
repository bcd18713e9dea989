package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pokenft/pokenft/pokenft/logger"
)

// Metadata is one NFT metadata document in the standard token shape.
type Metadata struct {
	TokenID     int64  `json:"tokenId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type datasetFile struct {
	Data []Metadata `json:"data"`
}

// loadDataset reads and validates the metadata file. Every entry must have
// a positive token id and a name; duplicates fail startup.
func loadDataset(path string) (map[int64]Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata dataset: %w", err)
	}

	var doc datasetFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata dataset is not valid JSON: %w", err)
	}

	byID := make(map[int64]Metadata, len(doc.Data))
	for i, m := range doc.Data {
		if m.TokenID <= 0 {
			return nil, fmt.Errorf("metadata entry %d has invalid tokenId %d", i, m.TokenID)
		}
		if m.Name == "" {
			return nil, fmt.Errorf("metadata entry %d is missing a name", i)
		}
		if _, dup := byID[m.TokenID]; dup {
			return nil, fmt.Errorf("duplicate tokenId %d in metadata dataset", m.TokenID)
		}
		byID[m.TokenID] = m
	}
	return byID, nil
}

func main() {
	path := flag.String("dataset", "nft-metadata.json", "path to the metadata JSON file")
	address := flag.String("address", ":3001", "listen address")
	flag.Parse()

	customHandler := logger.NewHandler("NFTMeta")
	slog.SetDefault(slog.New(customHandler))

	dataset, err := loadDataset(*path)
	if err != nil {
		slog.Error("Failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Loaded NFT metadata",
		slog.String("type", "sys"),
		slog.Int("tokens", len(dataset)))

	app := fiber.New(fiber.Config{
		AppName:      "PokeNFT Metadata",
		ServerHeader: "PokeNFT-Meta",
	})
	app.Use(recover.New())

	app.Get("/nft/:tokenId", func(c *fiber.Ctx) error {
		tokenID, err := c.ParamsInt("tokenId")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "tokenId must be an integer",
			})
		}

		meta, ok := dataset[int64(tokenID)]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("no metadata for token %d", tokenID),
			})
		}
		return c.JSON(meta)
	})

	slog.Info("Starting metadata server",
		slog.String("type", "sys"),
		slog.String("address", *address))

	if err := app.Listen(*address); err != nil {
		slog.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
