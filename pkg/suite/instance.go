package suite

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/casenav/pkg/domain"
)

type instancePayload struct {
	Entities []domain.Entity `json:"entities"`
}

// ParseInstance decodes a remote payload of the form {"entities":[{"id","type","properties"}]}.
func ParseInstance(id string, body []byte) (*domain.Instance, error) {
	var payload instancePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse instance %s: %w", id, err)
	}
	for i, e := range payload.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("instance %s: entity %d has no id", id, i)
		}
	}
	return &domain.Instance{ID: id, Entities: payload.Entities}, nil
}

// EncodeInstance renders entities in the format ParseInstance reads.
func EncodeInstance(entities []domain.Entity) ([]byte, error) {
	return json.Marshal(instancePayload{Entities: entities})
}
