// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: AggregateModel, the shared id/timestamp/version columns
//   - car.go: cars
//   - crm.go: leads, reviews, manager_scores
//   - identity.go: accounts, profiles, user_roles
//   - analytics.go: analytics_events, chat_messages
//
// The SQL migrations under migrations/ are the schema of record; AutoMigrate on these
// models is only used by repository tests running on SQLite.
package models
