package config

import "time"

// Application-wide constants organized by domain

// Database and Performance Constants
const (
	DefaultQueryTimeout = 30 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	MaxBatchSize = 1000
)

// Catalog Constants
const (
	// Upstream fetch
	UpstreamTimeout = 60 * time.Second

	// In-process cache in front of the file store
	CatalogCacheSize = 512
)

// Ledger Constants
const (
	// Default fees in wei; config can override. 0.01 native units.
	DefaultBoosterFeeWei    = 10_000_000_000_000_000
	DefaultRedemptionFeeWei = 10_000_000_000_000_000
)

// API and Rate Limiting Constants
const (
	RequestTimeout  = 30 * time.Second
	UserRateLimit   = 60
	RateLimitWindow = 1 * time.Minute
)
