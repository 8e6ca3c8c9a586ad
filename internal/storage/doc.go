// Package storage provides badger-backed implementations of the project
// registry, the per-project settings store and the current-project pointer.
//
// All records live in one badgerhold store. Settings documents are kept as
// their JSON wire form so arbitrary values survive the gob encoding
// badgerhold uses for records.
package storage
