// Package catalog holds the pure decision logic of the resource catalog:
// resolving which union variant a resource payload belongs to, building
// lookup predicates from optional query arguments, and decoding loosely-typed
// stored documents into models.Resource values.
//
// Nothing in this package performs I/O, so it is shared by the query server,
// the ingestion tooling, and the client SDK.
package catalog
