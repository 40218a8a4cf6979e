package decl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// SupportedFormatVersion is the index document schema version this loader
// understands.
const SupportedFormatVersion = 1

// LoadError reports a problem with the index document itself.
type LoadError struct {
	Path    string // file path, when known
	Message string
	Err     error // underlying error (optional)
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// crateInfo is the root descriptor of the index document.
type crateInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// LoadFile reads and parses an index document from disk.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "reading index document", Err: err}
	}
	g, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Path == "" {
			loadErr.Path = path
		}
		return nil, err
	}
	return g, nil
}

// Parse decodes an index document into a Graph.
//
// The index object is decoded token by token rather than into a Go map:
// map iteration order is randomized, and the classifier worklist must follow
// document order for output to be byte-stable across runs.
func Parse(data []byte) (*Graph, error) {
	// First pass: pull the scalar header fields with the ordinary decoder.
	var header struct {
		FormatVersion int       `json:"format_version"`
		Crate         crateInfo `json:"crate"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, &LoadError{Message: "decoding index document", Err: err}
	}
	if header.FormatVersion != SupportedFormatVersion {
		return nil, &LoadError{
			Message: fmt.Sprintf("unsupported format_version %d (want %d)",
				header.FormatVersion, SupportedFormatVersion),
		}
	}

	g := NewGraph(header.Crate.Name)
	if err := decodeIndex(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

// decodeIndex walks the top-level object and decodes the "index" member in
// document order.
func decodeIndex(data []byte, g *Graph) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return &LoadError{Message: "index document is not an object", Err: err}
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return &LoadError{Message: "reading index document", Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return &LoadError{Message: fmt.Sprintf("unexpected token %v in index document", keyTok)}
		}

		if key != "index" {
			// Skip the member value; header fields were already decoded.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return &LoadError{Message: fmt.Sprintf("skipping member %q", key), Err: err}
			}
			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return &LoadError{Message: `"index" member is not an object`, Err: err}
		}
		for dec.More() {
			idTok, err := dec.Token()
			if err != nil {
				return &LoadError{Message: "reading index entry", Err: err}
			}
			id, ok := idTok.(string)
			if !ok {
				return &LoadError{Message: fmt.Sprintf("unexpected index key %v", idTok)}
			}

			d := &Declaration{}
			if err := dec.Decode(d); err != nil {
				return &LoadError{Message: fmt.Sprintf("decoding declaration %q", id), Err: err}
			}
			if err := validateDeclaration(ID(id), d); err != nil {
				return err
			}
			if err := g.Insert(ID(id), d); err != nil {
				return &LoadError{Message: "inserting declaration", Err: err}
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return &LoadError{Message: `unterminated "index" object`, Err: err}
		}
	}

	return nil
}

// validateDeclaration enforces the structural contract per kind.
// Name presence is deliberately not checked here: a missing name is only
// fatal once the classifier actually needs it.
func validateDeclaration(id ID, d *Declaration) error {
	if !ValidKinds[d.Kind] {
		return &LoadError{Message: fmt.Sprintf("declaration %q has unknown kind %q", id, d.Kind)}
	}
	if d.Kind == KindStruct && d.Struct == nil {
		return &LoadError{Message: fmt.Sprintf("struct declaration %q is missing its struct payload", id)}
	}
	if d.Kind == KindEnum && d.Enum == nil {
		return &LoadError{Message: fmt.Sprintf("enum declaration %q is missing its enum payload", id)}
	}
	if d.Kind != KindStruct && d.Struct != nil {
		return &LoadError{Message: fmt.Sprintf("declaration %q carries a struct payload but has kind %q", id, d.Kind)}
	}
	if d.Kind != KindEnum && d.Enum != nil {
		return &LoadError{Message: fmt.Sprintf("declaration %q carries an enum payload but has kind %q", id, d.Kind)}
	}
	return nil
}

// expectDelim consumes one token and checks it is the given delimiter.
func expectDelim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || rune(delim) != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
