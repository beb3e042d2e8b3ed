package pkg

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUID strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (that *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
