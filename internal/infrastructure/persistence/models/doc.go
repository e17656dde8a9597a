// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - ledger.go: ledger transactions and reconciliation runs
// - partner.go: customers and suppliers
// - trade.go: the read-only sales and purchase records
package models
