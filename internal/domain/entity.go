package domain

import "github.com/google/uuid"

// EntityKind represents the legal nature of an owning entity
type EntityKind string

const (
	EntityKindIndividual  EntityKind = "INDIVIDUAL"
	EntityKindLegalPerson EntityKind = "LEGAL_PERSON"
)

// Entity represents a person or company that owns shares of assets
type Entity struct {
	ID     uuid.UUID
	Name   string
	Kind   EntityKind
	UserID uuid.UUID // Account the entity belongs to
}
