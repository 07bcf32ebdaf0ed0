package kafka

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/steam-tracker/internal/domain"
)

var errInvalidEvent = errors.New("invalid lookup event")

// EncodeEvent serializes a lookup event for the wire
func EncodeEvent(event domain.LookupEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding lookup event: %w", err)
	}
	return data, nil
}

// DecodeEvent parses and validates a lookup event message. Text fields are
// cut to their storage limits.
func DecodeEvent(data []byte) (domain.LookupEvent, error) {
	var event domain.LookupEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.LookupEvent{}, fmt.Errorf("decoding lookup event: %w", err)
	}

	if _, err := uuid.Parse(event.ID); err != nil {
		return domain.LookupEvent{}, fmt.Errorf("%w: bad id %q", errInvalidEvent, event.ID)
	}
	if !event.Kind.Valid() {
		return domain.LookupEvent{}, fmt.Errorf("%w: unknown kind %q", errInvalidEvent, event.Kind)
	}
	if event.Kind == domain.LookupKindAchievements && !domain.ValidTitleID(event.TitleID) {
		return domain.LookupEvent{}, fmt.Errorf("%w: achievements lookup with bad title %q", errInvalidEvent, event.TitleID)
	}
	return event.Bounded(), nil
}

// MessageKey picks the partition key: the player when known, else the game
// name, else the event itself.
func MessageKey(event domain.LookupEvent) string {
	switch {
	case event.PlayerID != "":
		return event.PlayerID
	case event.GameName != "":
		return event.GameName
	default:
		return event.ID
	}
}
