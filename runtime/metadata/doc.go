// Package metadata is the consumer side of contract manifests.
//
// A manifest produced by the compiler stores every name and type as a
// registry symbol. The Registry in this package decodes a manifest (plain
// JSON or gzip-compressed), resolves the symbols back into names and
// indexes the entries for lookups by name, by selector and by type.
//
// # Usage
//
//	reg := metadata.New()
//	if err := reg.Load(data); err != nil {
//		return err
//	}
//	entry, err := reg.BySelector(sel)
//	if errors.Is(err, metadata.ErrNotFound) {
//		// unknown selector
//	}
//
// Package-level helpers (RegisterManifest, QueryMessage, QuerySelector and
// friends) operate on a process-wide registry.
//
// # Concurrency
//
// All Registry methods are safe for concurrent use. Query results that
// require a scan are cached until the next Load.
package metadata
