package events

import (
	"encoding/json"
	"time"
)

// Actions recorded on settings changes.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entities settings changes apply to.
const (
	EntityCategory = "category"
	EntityAccount  = "account"
	EntityCurrency = "currency"
)

// SettingsEvent describes one settings mutation. The audit worker consumes
// these and appends them to the audit log.
type SettingsEvent struct {
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSettingsEvent builds an event stamped with the current time.
func NewSettingsEvent(userID int64, action, entity string) *SettingsEvent {
	return &SettingsEvent{
		UserID:     userID,
		Action:     action,
		Entity:     entity,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *SettingsEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SettingsEventFromJSON creates an event from JSON bytes
func SettingsEventFromJSON(data []byte) (*SettingsEvent, error) {
	var e SettingsEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
