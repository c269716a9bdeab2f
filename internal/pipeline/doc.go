// Package pipeline runs many region queries against one shared feature
// querier on a pool of workers and hands each region's features to a visit
// callback in input order.
//
// The only contract to implement is Querier (Features).
// This keeps the pipeline swappable and testable.
package pipeline
