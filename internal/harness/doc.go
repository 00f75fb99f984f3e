// Package harness runs proc scenarios: YAML files that load definitions,
// drive an engine through a list of steps and assert on the result.
//
// A scenario looks like:
//
//	name: aegis_wall
//	description: Three blocks stack the shield, a 15 point blow takes two stacks.
//	definitions:
//	  - name: BurningAegis
//	    trigger: ON_BLOCK
//	    icd_ms: 500
//	    duration_ms: 6000
//	    magnitude: 12
//	    max_stacks: 3
//	    stack_rule: STACK
//	steps:
//	  - repeat: 3
//	    do:
//	      - action: block
//	      - action: advance
//	        ms: 500
//	  - action: consume
//	    amount: 15
//	assertions:
//	  - type: active_stacks
//	    proc: BurningAegis
//	    equals: 1
//
// Steps are flattened into a proc.Input stream before they run, so a
// journaled scenario replays exactly. Every fire lands in Result.Trace;
// RunWithGolden compares the trace and final state against a canonical
// JSON golden file.
package harness
