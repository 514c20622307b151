// Package tagless describes effectful programs against capability
// interfaces ("algebras") and optimizes them by static analysis.
//
// # Programs
//
// A Program[Alg, A] wraps a function of an algebra value: every effect it has
// goes through Alg. The same Program can therefore be run against a real
// implementation, or against an analysis implementation whose operations
// only record what was asked for.
//
// # Analysis
//
// Extract runs a Program against the analysis algebra an Analyzer builds
// around an Accumulator. The algebra adds one summary per operation; the
// Accumulator folds them with the Analyzer's Monoid. Analysis has no side
// effects and can be repeated.
//
// Only operations the program's applicative structure proves independent
// are analyzed. Effect, Map, Map2 and Sequence are walked; the continuation
// of a Bind and the body of a FromFunc are not, because what they do may
// depend on a result analysis only has a placeholder for.
//
// # Optimization
//
// Rebuild turns a summary and the real algebra into an algebra that can
// prefetch, batch or de-duplicate what the summary names and delegates the
// rest. Optimize is Extract, Rebuild, then Run. The result equals running
// the Program directly against the real algebra; only the batching and
// ordering of independent operations may differ. Operations whose inputs
// depend on earlier results never reach the summary, so they are served by
// the real algebra when the program reaches them; writes are delegated in
// program order.
package tagless
