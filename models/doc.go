// Package models provides shared data structures for the SGCI resource catalog.
//
// This package contains the typed view of catalog records used by the query
// server, the client SDK, and the command-line tools. Keeping the models in a
// leaf package lets every component import them without import cycles.
//
// The models in this package represent:
//   - Resources: top-level catalog records (id, name, category, hosts)
//   - Storage: the storage-system shape of a resource payload
//   - Compute: the scheduler/compute-system shape of a resource payload
//   - Shared building blocks: connections, hosts, node hardware, quotas
//
// Types are declared leaf-first: shared entities, then composites, then the
// two payload variants, then Resource itself.
package models
