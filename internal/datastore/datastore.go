// Package datastore selects the sink a run delivers to.
package datastore

import (
	"context"
	"time"

	"rras-datagen/internal/apiclient"
	"rras-datagen/internal/sink"
	"rras-datagen/internal/store"
)

// Type represents the kind of sink to use
type Type string

const (
	// PostgreSQLStore writes into the cbs schema
	PostgreSQLStore Type = "db"
	// APIStore posts JSON to the regulatory reporting API
	APIStore Type = "api"
	// MemoryStore keeps records in process, used for dry runs
	MemoryStore Type = "memory"
)

// Config holds configuration for sink creation
type Config struct {
	Type     Type
	Database store.Config
	APIURL   string
	APIToken string
	Timeout  time.Duration
}

// New creates a sink based on configuration. A database that cannot be
// reached is an error.
func New(ctx context.Context, config Config) (sink.Sink, error) {
	switch config.Type {
	case PostgreSQLStore:
		s, err := store.Connect(ctx, config.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	case APIStore:
		return apiclient.NewClient(config.APIURL,
			apiclient.WithToken(config.APIToken),
			apiclient.WithTimeout(config.Timeout),
		), nil
	case MemoryStore:
		return sink.NewMemory(), nil
	default:
		return nil, &UnsupportedStoreTypeError{Type: string(config.Type)}
	}
}

// UnsupportedStoreTypeError is returned when an unsupported sink type is requested
type UnsupportedStoreTypeError struct {
	Type string
}

func (e *UnsupportedStoreTypeError) Error() string {
	return "unsupported sink type: " + e.Type
}
