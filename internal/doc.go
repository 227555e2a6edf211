// Package internal documents the eventos server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, error writer, and routing
// - domain: business rules for users, events, RSVPs, comments, and reports
// - storage: Postgres repositories and embedded migrations
// - auth, audit, config, metrics, sanitize, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
