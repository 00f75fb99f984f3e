package procdef

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/procforge/internal/proc"
)

// Records converts definitions to their file form, in order.
func Records(defs []proc.Definition) File {
	out := make(File, len(defs))
	for i, def := range defs {
		out[i] = FromDefinition(def)
	}
	return out
}

// ExportJSON writes defs as an indented JSON array that Parse accepts.
func ExportJSON(w io.Writer, defs []proc.Definition) error {
	data, err := json.MarshalIndent(Records(defs), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal definitions: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write definitions: %w", err)
	}
	return nil
}

// ExportYAML writes defs as a YAML sequence that Parse accepts.
func ExportYAML(w io.Writer, defs []proc.Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Records(defs)); err != nil {
		return fmt.Errorf("encode definitions: %w", err)
	}
	return enc.Close()
}

// Export writes defs in the given format. Only JSON and YAML are writable.
func Export(w io.Writer, defs []proc.Definition, format Format) error {
	switch format {
	case FormatJSON:
		return ExportJSON(w, defs)
	case FormatYAML:
		return ExportYAML(w, defs)
	default:
		return fmt.Errorf("cannot export to %q (want json or yaml)", format)
	}
}
