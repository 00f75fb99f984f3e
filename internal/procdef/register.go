package procdef

import (
	"github.com/roach88/procforge/internal/proc"
)

// Report is the outcome of loading a definition file into an engine.
type Report struct {
	Source string

	// Added holds the engine ids assigned, in file order.
	Added []int

	// Skipped holds every record that was not registered: rejected at parse
	// time or refused by the engine (capacity).
	Skipped []Rejection
}

// Register adds the accepted definitions of res to eng in file order.
// Records that no longer fit are reported in Skipped; loading never aborts.
func Register(eng *proc.Engine, res *Result) Report {
	rep := Report{Source: res.Source}
	rep.Skipped = append(rep.Skipped, res.Rejected...)

	for _, e := range res.Entries {
		id, err := eng.Register(e.Definition)
		if err != nil {
			rep.Skipped = append(rep.Skipped, Rejection{
				Index: e.Index,
				Name:  e.Definition.Name,
				Err:   err,
			})
			continue
		}
		rep.Added = append(rep.Added, id)
	}
	return rep
}

// LoadFile parses path and registers its definitions into eng.
// The error covers file-level failures only.
func LoadFile(eng *proc.Engine, path string) (Report, error) {
	res, err := ParseFile(path)
	if err != nil {
		return Report{Source: path}, err
	}
	return Register(eng, res), nil
}
