// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// EnvironmentProduction is the environment name that selects the production cost.
const EnvironmentProduction = "production"

// Bcrypt work factors.
const (
	ProductionCost  = 14
	DevelopmentCost = bcrypt.MinCost
)

// DefaultPepper is only acceptable outside production.
const DefaultPepper = "Bell_Pepper"

// maxBcryptInput is bcrypt's input limit in bytes.
const maxBcryptInput = 72

// Password policy errors.
var (
	ErrEmptyPassword   = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")
	ErrPasswordTooLong = oops.Code("AUTH_PASSWORD_TOO_LONG").Errorf("password exceeds %d bytes", maxBcryptInput)
	ErrEmptyPepper     = oops.Code("AUTH_EMPTY_PEPPER").Errorf("password pepper cannot be empty")
)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a storable hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)
}

// Rehasher reports whether a stored hash should be replaced with a fresh one.
type Rehasher interface {
	NeedsRehash(hash string) bool
}

// CostForEnvironment returns the bcrypt cost for the named environment.
func CostForEnvironment(environment string) int {
	if environment == EnvironmentProduction {
		return ProductionCost
	}
	return DevelopmentCost
}

// PasswordConfig configures a PasswordPolicy.
type PasswordConfig struct {
	Pepper string
	Cost   int
}

// PasswordPolicy hashes passwords with bcrypt after appending a deployment-wide pepper.
type PasswordPolicy struct {
	pepper string
	cost   int
}

// NewPasswordPolicy creates a PasswordPolicy. A zero Cost selects DevelopmentCost.
func NewPasswordPolicy(cfg PasswordConfig) (*PasswordPolicy, error) {
	if cfg.Pepper == "" {
		return nil, ErrEmptyPepper
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = DevelopmentCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordPolicy{pepper: cfg.Pepper, cost: cost}, nil
}

// Cost returns the configured bcrypt cost.
func (p *PasswordPolicy) Cost() int {
	return p.cost
}

// Hash produces a bcrypt hash of password+pepper.
func (p *PasswordPolicy) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	seasoned := p.season(password)
	if len(seasoned) > maxBcryptInput {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword(seasoned, p.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("cost", p.cost).Wrap(err)
	}
	return string(hash), nil
}

// Verify compares password+pepper against a stored bcrypt hash.
func (p *PasswordPolicy) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), p.season(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
}

// NeedsRehash reports whether hash was produced with a different cost.
func (p *PasswordPolicy) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost != p.cost
}

// season is the only place the pepper is combined with a password.
func (p *PasswordPolicy) season(password string) []byte {
	return []byte(password + p.pepper)
}

// Compile-time interface checks.
var (
	_ PasswordHasher = (*PasswordPolicy)(nil)
	_ Rehasher       = (*PasswordPolicy)(nil)
)
