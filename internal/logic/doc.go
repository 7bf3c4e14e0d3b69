// Package logic models description-logic definitions as graphs of
// content-addressed nodes.
//
// An expression exists in two forms sharing one generic implementation:
// Expression[ids.Nid] (INTERNAL, fast, valid within one identifier context)
// and Expression[uuid.UUID] (EXTERNAL, portable). Internalize and Externalize
// translate between them without touching node identities: a node's UUID is
// derived from UUID-resolved content, so both forms agree.
package logic
