// Package service contains small infrastructure adapters that back
// application-layer interfaces.
package service

import "github.com/google/uuid"

// UUIDGenerator mints v4 UUIDs for new aggregates and child records.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh identifier.
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
