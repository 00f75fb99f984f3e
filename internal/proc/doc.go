// Package proc implements the procforge conditional-effect trigger engine.
//
// A proc is a reactive rule that fires when a matching gameplay event is
// reported (hit, crit, kill, block, dodge). Each registered definition owns a
// small runtime state machine: an internal cooldown, a stack count, a buff
// duration and telemetry counters.
//
// ARCHITECTURE:
//
// Single-Threaded Game Loop:
// The engine is driven synchronously by its host. A typical frame looks like:
//
//	eng.Hit(crit)          // zero or more event notifications
//	eng.Block()
//	eng.Advance(dt, hp, hpMax) // exactly one time step
//
// No call blocks and nothing runs in the background; a host that stops
// calling Advance freezes every timer. Hosts that share an engine between
// goroutines must serialize calls themselves (one mutex around the engine)
// or keep one engine per actor.
//
// Fire Attempt:
//  1. Cooldown gate: a proc with cooldown remaining is skipped.
//  2. Rate gate: once the global per-second cap is reached, every proc is skipped.
//  3. The cooldown is armed, counters are bumped and a sequence number is stamped.
//  4. For procs with a duration, the stack rule updates stacks and duration.
//
// Rejections have no side effects and consume no sequence number.
//
// CRITICAL PATTERNS:
//
// Logical Sequence:
// Every successful fire is stamped with Clock.Next(). Sequence numbers are
// strictly increasing and never reused within a session, so fire order can be
// compared across replays without wall-clock time.
//
// Deterministic Ordering:
// Procs matching an event are visited in registration order (ascending id).
// For a critical hit, OnHit procs are attempted before OnCrit procs.
//
// Windowed Telemetry:
// The rate window subtracts 1000ms once per Advance call when it crosses a
// second. UptimeRatio and TriggersPerMinute divide by that trailing window,
// which is only an approximation of session time. The Session* variants use
// the cumulative elapsed time instead.
package proc
