// Package bootstrap provisions the first admin API key.
//
// Run is called once at startup, after migrations and before the API
// listener binds. If no admin key exists it registers a fresh one with the
// description "Initial Admin" and logs it once; otherwise it does nothing.
// Any error is fatal to startup.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/filter"
	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/repository"
)

// InitialDescription is the description given to the bootstrap key
const InitialDescription = "Initial Admin"

// Store is the subset of repository.APIUsers bootstrap needs
type Store interface {
	List(ctx context.Context, f repository.APIUserFilter) ([]*repository.APIUser, error)
	Create(ctx context.Context, in repository.NewAPIUser) (*repository.APIUser, error)
}

// Result describes what Run did
type Result struct {
	// Created is true when a new admin key was registered
	Created bool
	// Key is the new key; empty unless Created
	Key string
	// Admins is the number of admin keys found before Run acted
	Admins int
}

// Run ensures at least one admin API key exists
func Run(ctx context.Context, store Store, logger *observability.Logger) (Result, error) {
	admins, err := store.List(ctx, repository.APIUserFilter{IsAdmin: filter.Some(true)})
	if err != nil {
		return Result{}, fmt.Errorf("bootstrap: list admin keys: %w", err)
	}
	if len(admins) > 0 {
		logger.WithField("admins", len(admins)).Debug("Admin API key present, skipping bootstrap")
		return Result{Admins: len(admins)}, nil
	}

	key := auth.GenerateKey()
	created, err := store.Create(ctx, repository.NewAPIUser{
		Key:         key,
		IsAdmin:     true,
		Description: InitialDescription,
	})
	if err != nil {
		return Result{}, fmt.Errorf("bootstrap: create admin key: %w", err)
	}

	// The only time the full key is ever logged.
	logger.WithFields(map[string]interface{}{
		"api_user_id": created.ID,
		"api_key":     created.Key,
	}).Warn("Created initial admin API key; store it now, it will not be shown again")

	return Result{Created: true, Key: created.Key}, nil
}
