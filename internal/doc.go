// Package internal documents the Eventment server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: event and join rules over schema-flexible documents
// - storage: repositories (MongoDB, plus an in-memory one for tests)
// - auth, audit, config, metrics, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
