// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM-specific behaviour and table mappings
// 2. Persistence models contain all GORM annotations and table names
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, OwnedAggregateModel)
// - identity.go: Identity context models (User)
// - school.go: School context models (Student, Announcement)
// - ledger.go: Fee ledger context models (Fee, Payment)
package models
