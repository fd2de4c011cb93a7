// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// ExperienceCacheID is the single row holding the experience payload.
const ExperienceCacheID = "main"

// ExperienceCache is the last payload fetched from the experience service.
// The payload is kept as raw JSON; its shape belongs to that service.
type ExperienceCache struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Count returns the number of entries when the payload is a JSON array,
// and 0 otherwise.
func (e *ExperienceCache) Count() int {
	var items []json.RawMessage
	if err := json.Unmarshal(e.Payload, &items); err != nil {
		return 0
	}
	return len(items)
}
