// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/chores/internal/domain"
)

// InitStoreInput contains the input parameters for InitStore.
type InitStoreInput struct {
	DataDir string // Path to the chores data directory
}

// InitStoreOutput contains the output from InitStore.
type InitStoreOutput struct {
	DataDir            string // Path to the data directory
	AlreadyInitialized bool   // True if the store existed before this call
}

// InitStore prepares the data directory and the configured task store.
type InitStore struct {
	storeInit domain.StoreInitializer
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(storeInit domain.StoreInitializer) *InitStore {
	return &InitStore{storeInit: storeInit}
}

// Execute creates the data and logs directories and initializes the store.
// Running it on an initialized store is not an error.
func (uc *InitStore) Execute(_ context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	if in.DataDir != "" {
		if err := os.MkdirAll(filepath.Join(in.DataDir, "logs"), 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	if uc.storeInit.IsInitialized() {
		return &InitStoreOutput{DataDir: in.DataDir, AlreadyInitialized: true}, nil
	}

	if err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize task store: %w", err)
	}

	return &InitStoreOutput{DataDir: in.DataDir}, nil
}
