// Package store provides SQLite-backed durable storage for identifiers,
// stamps and semantic chronologies.
//
// The store keeps:
//   - Components: one row per nid with its object type
//   - Identifiers: every UUID of a component, primordial first
//   - Stamps: the persisted StampRegistry, replayed on Open
//   - Semantics: each chronology as one encoded blob, indexed by
//     referenced component and assemblage
//   - Logic graph refs: which concepts each logic graph mentions
//
// Store implements ids.Resolver, schema.Source and schema.Writer, so the
// usage description cache and Define run against it directly.
//
// # Ordering
//
// Every multi-row query orders by nid or stamp sequence, so reads return
// identical results across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
