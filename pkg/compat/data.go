// Package compat reads MDN browser-compat-data (BCD) and reduces its
// per-browser support history into a single verdict per CSS feature.
//
// Only the css subtree of a BCD document is kept. Support entries, which
// BCD writes either as one statement or as a list of statements, are
// normalized at load time so lookups only ever see a list.
package compat

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/agentstation/cssmap/pkg/errors"
)

// Data is the css subtree of a BCD document.
type Data struct {
	Properties *Node `json:"properties"`
	AtRules    *Node `json:"at-rules"`
	Types      *Node `json:"types"`
}

// Node is one level of the BCD feature tree. Compat is nil for
// grouping nodes that carry no support table of their own.
type Node struct {
	Compat   *Compat
	Children map[string]*Node
}

// Compat is a BCD __compat block.
type Compat struct {
	Support map[string][]SupportStatement `json:"support"`
}

// SupportStatement is one entry of a browser's support history.
type SupportStatement struct {
	VersionAdded          Version `json:"version_added"`
	VersionRemoved        Version `json:"version_removed,omitempty"`
	Prefix                string  `json:"prefix,omitempty"`
	AltName               string  `json:"alternative_name,omitempty"`
	PartialImplementation bool    `json:"partial_implementation,omitempty"`

	// Flagged is set when the statement carries a flags key.
	Flagged bool `json:"-"`
}

// Version is a BCD version marker: a version string, true, false, or null.
type Version struct {
	Value string // Version string such as "111" or "preview"
	Bool  bool   // Set when the marker is the literal true
}

// Truthy reports whether the marker records that support exists.
func (v Version) Truthy() bool {
	return v.Bool || v.Value != ""
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Version) UnmarshalJSON(data []byte) error {
	*v = Version{}
	switch t := bytes.TrimSpace(data); {
	case string(t) == "null", string(t) == "false":
		return nil
	case string(t) == "true":
		v.Bool = true
		return nil
	}
	return json.Unmarshal(data, &v.Value)
}

// MarshalJSON implements json.Marshaler.
func (v Version) MarshalJSON() ([]byte, error) {
	switch {
	case v.Bool:
		return []byte("true"), nil
	case v.Value == "":
		return []byte("false"), nil
	}
	return json.Marshal(v.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SupportStatement) UnmarshalJSON(data []byte) error {
	type plain SupportStatement
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if flags, ok := keys["flags"]; ok && string(bytes.TrimSpace(flags)) != "null" {
		p.Flagged = true
	}
	*s = SupportStatement(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Each browser entry may be a
// single statement or a list of them.
func (c *Compat) UnmarshalJSON(data []byte) error {
	var raw struct {
		Support map[string]json.RawMessage `json:"support"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Support = make(map[string][]SupportStatement, len(raw.Support))
	for browser, entry := range raw.Support {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || string(entry) == "null" {
			continue
		}
		var stmts []SupportStatement
		if entry[0] == '[' {
			if err := json.Unmarshal(entry, &stmts); err != nil {
				return errors.WrapParse("json", "", err)
			}
		} else {
			var one SupportStatement
			if err := json.Unmarshal(entry, &one); err != nil {
				return errors.WrapParse("json", "", err)
			}
			stmts = []SupportStatement{one}
		}
		c.Support[browser] = stmts
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Keys other than __compat that
// hold objects become children; scalar keys are ignored.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	node := Node{}
	for key, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || v[0] != '{' {
			continue
		}
		if key == "__compat" {
			node.Compat = &Compat{}
			if err := json.Unmarshal(v, node.Compat); err != nil {
				return err
			}
			continue
		}
		child := &Node{}
		if err := json.Unmarshal(v, child); err != nil {
			return err
		}
		if node.Children == nil {
			node.Children = make(map[string]*Node)
		}
		node.Children[key] = child
	}
	*n = node
	return nil
}

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	return n.Children[name]
}

// Load reads a BCD document and keeps its css subtree.
func Load(r io.Reader) (*Data, error) {
	var doc struct {
		CSS *Data `json:"css"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if doc.CSS == nil {
		return nil, errors.NewValidationError("css", nil, "compatibility data has no css section")
	}
	return doc.CSS, nil
}

// LoadFile reads a BCD document from disk.
func LoadFile(path string) (*Data, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := Load(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return data, nil
}
