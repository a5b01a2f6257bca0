package cssdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Feature types as webref states them. Other values pass through untouched.
const (
	TypeProperty = "property"
	TypeAtRule   = "at-rule"
	TypeValue    = "value"
	TypeFunction = "function"
	TypeType     = "type"
)

// FeatureRecord is one property, at-rule, or value declared by a specification.
// Keys the upstream document carries beyond the named fields are kept in Extra
// and written back out unchanged.
type FeatureRecord struct {
	Name          string         // Feature name, e.g. color, @media, if()
	Type          string         // Upstream type, empty for properties and at-rules
	Value         string         // Grammar string
	Href          string         // Link into the specification
	Compatibility *Compatibility // Verdict, set by annotation

	Extra map[string]json.RawMessage
}

// Compatibility is the support verdict attached to a feature.
type Compatibility struct {
	Supported bool            `json:"supported"`
	Browsers  int             `json:"browsers"`
	Flagged   bool            `json:"flagged"`
	Support   *BrowserSupport `json:"support,omitempty"`
}

// BrowserSupport records per-browser support for display.
type BrowserSupport struct {
	Chrome  bool `json:"chrome"`
	Firefox bool `json:"firefox"`
	Safari  bool `json:"safari"`
}

var featureKnownKeys = map[string]bool{
	"name": true, "type": true, "value": true, "href": true, "compatibility": true,
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FeatureRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var rec FeatureRecord
	for key, target := range map[string]*string{
		"name": &rec.Name, "type": &rec.Type, "value": &rec.Value, "href": &rec.Href,
	} {
		if err := decodeString(raw, key, target); err != nil {
			return err
		}
	}
	if v, ok := raw["compatibility"]; ok && !isNull(v) {
		rec.Compatibility = &Compatibility{}
		if err := json.Unmarshal(v, rec.Compatibility); err != nil {
			return fmt.Errorf("feature %q: compatibility: %w", rec.Name, err)
		}
	}

	for key, v := range raw {
		if featureKnownKeys[key] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}
		rec.Extra[key] = v
	}

	*f = rec
	return nil
}

// MarshalJSON implements json.Marshaler. Keys are written as name, type,
// value, href, the extra keys in sorted order, then compatibility.
func (f FeatureRecord) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.str("name", f.Name)
	if f.Type != "" {
		w.str("type", f.Type)
	}
	if f.Value != "" {
		w.str("value", f.Value)
	}
	if f.Href != "" {
		w.str("href", f.Href)
	}
	for _, key := range sortedKeys(f.Extra) {
		w.raw(key, f.Extra[key])
	}
	if f.Compatibility != nil {
		if err := w.value("compatibility", f.Compatibility); err != nil {
			return nil, err
		}
	}
	return w.finish(), w.err
}

// Clone returns a deep copy of the record.
func (f FeatureRecord) Clone() FeatureRecord {
	out := f
	if f.Compatibility != nil {
		c := *f.Compatibility
		if f.Compatibility.Support != nil {
			s := *f.Compatibility.Support
			c.Support = &s
		}
		out.Compatibility = &c
	}
	out.Extra = cloneRaw(f.Extra)
	return out
}

// IsFunction reports whether the record is typed as a function.
func (f FeatureRecord) IsFunction() bool {
	return f.Type == TypeFunction
}

func decodeString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// objectWriter builds a JSON object with a caller-chosen key order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) key(k string) {
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	kb, _ := marshalPlain(k)
	w.buf.Write(kb)
	w.buf.WriteByte(':')
}

func (w *objectWriter) raw(k string, v json.RawMessage) {
	w.key(k)
	w.buf.Write(v)
}

func (w *objectWriter) str(k, v string) {
	b, _ := marshalPlain(v)
	w.raw(k, b)
}

func (w *objectWriter) value(k string, v any) error {
	b, err := marshalPlain(v)
	if err != nil {
		w.err = err
		return err
	}
	w.raw(k, b)
	return nil
}

func (w *objectWriter) finish() []byte {
	if w.n == 0 {
		return []byte("{}")
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

// marshalPlain encodes v without escaping <, > and &, which appear in
// every CSS grammar string.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
