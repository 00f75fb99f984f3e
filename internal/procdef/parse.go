package procdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/procforge/internal/proc"
)

// Format is a definition file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
	FormatLua  Format = "lua"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	case ".lua":
		return FormatLua, nil
	default:
		return "", fmt.Errorf("unsupported definition file %q (want .json, .yaml, .yml, .cue or .lua)", path)
	}
}

// Entry is an accepted definition and its position in the source file.
type Entry struct {
	Index      int
	Definition proc.Definition
}

// Result is the outcome of parsing one definition file.
type Result struct {
	Source   string
	Entries  []Entry
	Rejected []Rejection
}

// Definitions returns the accepted definitions in file order.
func (r *Result) Definitions() []proc.Definition {
	out := make([]proc.Definition, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Definition
	}
	return out
}

// decoded is one record as read from a file, before validation.
type decoded struct {
	index  int
	line   int
	record Record
	err    error
}

// ParseFile reads and parses a definition file. The format comes from
// the extension.
func ParseFile(path string) (*Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, format, path)
}

// Parse decodes data in the given format.
//
// The returned error covers file-level problems only (syntax errors, wrong
// top-level shape). Problems with individual records are reported in
// Result.Rejected.
func Parse(data []byte, format Format, source string) (*Result, error) {
	var (
		items []decoded
		err   error
	)
	switch format {
	case FormatJSON:
		items, err = decodeJSON(data)
	case FormatYAML:
		items, err = decodeYAML(data)
	case FormatCUE:
		items, err = decodeCUE(data, source)
	case FormatLua:
		items, err = decodeLua(data, source)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return collect(source, items), nil
}

// FromRecords validates records that were decoded elsewhere, such as
// definitions embedded in a scenario file.
func FromRecords(source string, recs File) *Result {
	items := make([]decoded, len(recs))
	for i, rec := range recs {
		items[i] = decoded{index: i, record: rec}
	}
	return collect(source, items)
}

// collect validates decoded records and splits them into accepted and
// rejected.
func collect(source string, items []decoded) *Result {
	res := &Result{Source: source}
	for _, it := range items {
		if it.err != nil {
			res.Rejected = append(res.Rejected, Rejection{
				Index: it.index,
				Name:  it.record.Name,
				Errors: []ValidationError{{
					Field:   "record",
					Message: it.err.Error(),
					Code:    ErrMalformedRecord,
					Line:    it.line,
				}},
			})
			continue
		}

		if errs := Validate(it.record); len(errs) > 0 {
			for i := range errs {
				errs[i].Line = it.line
			}
			res.Rejected = append(res.Rejected, Rejection{
				Index:  it.index,
				Name:   it.record.Name,
				Errors: errs,
			})
			continue
		}

		def, err := it.record.ToDefinition()
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: it.index, Name: it.record.Name, Err: err})
			continue
		}
		res.Entries = append(res.Entries, Entry{Index: it.index, Definition: def})
	}
	return res
}

// decodeJSON reads a top-level array and decodes each element on its own,
// so one bad element does not hide the others.
func decodeJSON(data []byte) ([]decoded, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array of procs: %w", err)
	}

	out := make([]decoded, 0, len(raw))
	for i, msg := range raw {
		var rec Record
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		err := dec.Decode(&rec)
		out = append(out, decoded{index: i, record: rec, err: err})
	}
	return out, nil
}

// decodeYAML reads a top-level sequence. Each element is re-decoded with
// KnownFields so misspelled keys are rejected.
func decodeYAML(data []byte) ([]decoded, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of procs", root.Line)
	}

	out := make([]decoded, 0, len(root.Content))
	for i, node := range root.Content {
		var rec Record
		err := decodeYAMLNode(node, &rec)
		out = append(out, decoded{index: i, line: node.Line, record: rec, err: err})
	}
	return out, nil
}

func decodeYAMLNode(node *yaml.Node, rec *Record) error {
	buf, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	return dec.Decode(rec)
}
