package procdef

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var cueSchema string

// decodeCUE accepts either form:
//
//	procs: [{name: "Flurry", trigger: "ON_HIT", ...}, ...]
//	proc: BurningAegis: {trigger: "ON_BLOCK", ...}
//
// In the struct form the label is the name unless name is set. Each
// element is unified with #Proc on its own; a schema violation rejects
// that element only.
func decodeCUE(data []byte, source string) ([]decoded, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(cueSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError("schema", err)
	}
	procSchema := schema.LookupPath(cue.ParsePath("#Proc"))

	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	var out []decoded

	if list := v.LookupPath(cue.ParsePath("procs")); list.Exists() {
		iter, err := list.List()
		if err != nil {
			return nil, formatCUEError("procs", err)
		}
		for i := 0; iter.Next(); i++ {
			out = append(out, decodeCUEProc(procSchema, iter.Value(), len(out), fmt.Sprintf("procs[%d]", i), ""))
		}
	}

	if set := v.LookupPath(cue.ParsePath("proc")); set.Exists() {
		iter, err := set.Fields()
		if err != nil {
			return nil, formatCUEError("proc", err)
		}
		for iter.Next() {
			label := iter.Label()
			out = append(out, decodeCUEProc(procSchema, iter.Value(), len(out), "proc."+label, label))
		}
	}

	return out, nil
}

func decodeCUEProc(schema, v cue.Value, index int, field, label string) decoded {
	d := decoded{index: index, line: v.Pos().Line()}

	u := schema.Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		// Keep the name for the report even though the record is rejected.
		if n, nerr := v.LookupPath(cue.ParsePath("name")).String(); nerr == nil {
			d.record.Name = n
		} else {
			d.record.Name = label
		}
		d.err = formatCUEError(field, err)
		return d
	}

	if err := u.Decode(&d.record); err != nil {
		d.err = formatCUEError(field, err)
		return d
	}
	if d.record.Name == "" {
		d.record.Name = label
	}
	return d
}
