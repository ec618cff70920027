package persistence

import (
	"context"
	"errors"
	"fmt"
)

// ErrSlotEmpty is returned by Slot.Get when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable string-keyed byte store holding one value per key.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// SlotKey is the key under which a profile's cart is kept.
func SlotKey(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("cart:%s", profile)
}
