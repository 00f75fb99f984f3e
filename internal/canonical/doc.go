// Package canonical provides the deterministic JSON encoding used for
// golden traces and journal digests.
//
// CRITICAL: two runs that produce the same trace must produce identical
// bytes. Encoding rules:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings NFC normalized
//  4. No floats, no null
//
// Ratios and rates that are floats in the engine are rendered by callers
// as integers (per-mille, per-minute) before encoding.
package canonical
