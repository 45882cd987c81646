package models

import (
	"time"
)

// CitiesStorageKey is the fixed key the subscription list blob lives under.
const CitiesStorageKey = "notification_cities"

// StoredBlob is a single serialized value under a fixed key. The subscription
// list is the only durable state this app keeps.
type StoredBlob struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}
