// Package project holds the project registry and the current-project pointer.
//
// Project Representation:
//
// Each project is an independently configured data-collection workspace with:
//   - Unique project ID (UUID)
//   - Display metadata (name, single-letter icon, color)
//   - Creation time, which fixes its position in registry order
//
// Registry Order:
//
// Repository.GetAll returns projects ordered by CreatedAt, then ID. Every
// "first project" decision (matching, picking the next current project) uses
// this order.
//
// Current Project:
//
// DataService owns the pointer to the active project. It starts unset and is
// changed only through SetCurrent and Clear.
package project
