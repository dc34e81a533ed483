package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JSONMap is a custom type for storing free-form JSON objects in the database.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// JSONList is a custom type for storing free-form JSON arrays in the database.
type JSONList []interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the list.
//   - error: non-nil if marshaling fails.
func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (l *JSONList) Scan(value interface{}) error {
	if value == nil {
		*l = JSONList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// Base holds the columns shared by every entity: active flag, timestamps,
// and a free-form metadata blob.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  JSONMap   `gorm:"type:text" json:"metadata,omitempty"`
}

// InsertMetadata appends an entry to the metadata blob under the next free
// numeric key, mirroring an append-only audit trail.
// Parameters:
//   - data: entry to record.
// Returns: none.
func (b *Base) InsertMetadata(data map[string]interface{}) {
	if b.Metadata == nil {
		b.Metadata = JSONMap{}
	}
	index := 1
	for k := range b.Metadata {
		var n int
		if _, err := fmt.Sscanf(k, "%d", &n); err == nil && n >= index {
			index = n + 1
		}
	}
	b.Metadata[fmt.Sprintf("%d", index)] = data
}
