// Package store provides dataset document stores implementing the
// authorization engine's persistence contract.
//
// Mongo is the production store, backed by the catalog's MongoDB collection.
// Memory is an in-process store that evaluates the same filter documents the
// engine synthesizes; it backs the engine's consistency tests and is useful
// for development without a database.
//
// Both stores satisfy authz.DatasetFetcher and apply authz.Filter values to
// their list and count operations. Neither store makes authorization
// decisions: callers are expected to narrow filters through
// authz.Authorizer.NarrowFilter before querying.
package store
