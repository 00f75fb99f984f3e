// Package journal provides SQLite-backed storage for proc sessions.
//
// A session is the definitions an engine was loaded with, the ordered
// stream of inputs applied to it, and every fire those inputs produced.
//
// # Critical Patterns
//
// Logical ordering:
//   - Inputs are ordered by step, fires by seq (the engine's logical clock)
//   - Wall time is never stored; replay does not depend on it
//
// Deterministic replay:
//   - Definitions are stored as canonical JSON with a domain-separated hash
//   - Replaying the inputs on a fresh engine must reproduce the fire log
//     exactly; the first difference is reported as a Divergence
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
