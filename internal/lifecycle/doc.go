// Package lifecycle creates, switches and deletes projects.
//
// Every action runs under a single Service mutex so a request is handled to
// completion before the next one starts. Callers that need to match and then
// act without interleaving use Service.Atomically.
package lifecycle
