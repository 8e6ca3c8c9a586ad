// Package resolver turns an external request (action plus server account)
// into a lifecycle action.
//
// The decision itself is the pure function Decide. Resolver wraps it with
// request validation, settings generation and matching, and executes the
// result while holding the lifecycle lock so the match cannot go stale
// between lookup and action.
package resolver
