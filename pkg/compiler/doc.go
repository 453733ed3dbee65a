// Package compiler implements the core of starconf: evaluating Starlark
// configuration scripts in isolated scopes, composing environment and
// application scopes, and converting the resulting binding tables into
// canonical, serializable values.
//
// # Overview
//
// A configuration build produces one document per (application, environment)
// pair. Each document is the result of a three-stage pipeline:
//
//  1. The environment script runs in a brand-new Scope, yielding its
//     binding table. The environment's name is stamped into the table.
//  2. The application overlay script runs in a second, independent Scope
//     with the environment table injected as the single variable `env`.
//  3. The overlay's binding table is converted into a canonical Value,
//     keeping only upper-case top-level bindings.
//
// # Components
//
// Loader: evaluates one script file per fresh Scope and returns the
// resulting binding table. Also backs the vars() builtin, which resolves
// shared fragments by logical name from the vars directory and re-evaluates
// them on every call (no caching, no merging).
//
// Composer: builds the two-level composition for one pair. The overlay
// sees the environment only through the frozen `env` struct, so it can read
// but never mutate environment state, and environment bindings never leak
// into the overlay's own top level.
//
// Convert / ConvertBindings: recursive conversion from script values to the
// canonical Value model. Dicts become arrays when they hold no string keys
// (with 1-based index normalization) and objects otherwise (integer keys
// folded in as decimal strings). Top-level binding tables are filtered to
// upper-case names; nested values convert verbatim.
//
// # Error Handling
//
// Every failure is an *Error classified as load, runtime, conversion, or
// io, carrying the script path and a dotted diagnostic path such as
// "app.prod.SERVERS[3]". All errors are fatal to the batch: there is no
// per-pair recovery.
//
// # Isolation
//
// Scopes are created immediately before a script runs and discarded as soon
// as their binding table has been captured. Nothing is shared or pooled
// across compositions, so independent pairs could in principle be built in
// parallel; the batch driver processes them sequentially.
package compiler
