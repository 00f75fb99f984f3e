// Package procdef reads and writes proc definition files.
//
// Designers author procs as a list of records:
//
//	[{"name": "BurningAegis", "trigger": "ON_BLOCK", "icd_ms": 500,
//	  "duration_ms": 6000, "magnitude": 12, "max_stacks": 3,
//	  "stack_rule": "STACK", "param": 0}]
//
// The same record shape is accepted as JSON, YAML, CUE (checked against an
// embedded #Proc schema) and Lua (Proc "Name" { ... } constructors in a
// sandboxed VM). Every record is validated on its own. A bad record is
// reported and skipped; it never aborts the rest of the file.
//
// Parse never touches an engine. Register loads the accepted definitions
// into a proc.Engine and reports the ones that did not fit.
package procdef
