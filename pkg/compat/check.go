package compat

import (
	"strings"

	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Kind selects the BCD namespace a feature is looked up in.
type Kind string

// Lookup kinds.
const (
	KindProperty Kind = "property"
	KindAtRule   Kind = "at-rule"
	KindValue    Kind = "value"
	KindFunction Kind = "function"
)

// Browsers are the browsers counted toward a verdict, in order.
var Browsers = []string{"chrome", "firefox", "safari"}

// MajorityThreshold is how many browsers must support a feature.
const MajorityThreshold = 2

// Checker computes a verdict for a feature.
type Checker interface {
	Check(name string, kind Kind) cssdata.Compatibility
}

// Lookup finds the BCD node for a feature, or nil.
func (d *Data) Lookup(name string, kind Kind) *Node {
	if d == nil {
		return nil
	}
	switch kind {
	case KindProperty:
		return d.Properties.Child(name)
	case KindAtRule:
		return d.AtRules.Child(strings.TrimPrefix(name, "@"))
	case KindValue, KindFunction:
		name = strings.Replace(name, "()", "", 1)
		if node := d.Types.Child(name); node != nil {
			return node
		}
		// Color constructors live under types.color in BCD.
		return d.Types.Child("color").Child(name)
	}
	return nil
}

// Check implements Checker.
func (d *Data) Check(name string, kind Kind) cssdata.Compatibility {
	node := d.Lookup(name, kind)
	if node == nil || node.Compat == nil {
		return cssdata.Compatibility{}
	}
	return Reduce(node.Compat)
}

// Reduce folds a support table into a verdict.
func Reduce(c *Compat) cssdata.Compatibility {
	var (
		count   int
		flagged bool
		support = map[string]bool{}
	)

	for _, browser := range Browsers {
		for _, stmt := range c.Support[browser] {
			if !stmt.VersionAdded.Truthy() {
				continue
			}
			if stmt.Flagged {
				flagged = true
			}
			support[browser] = true
			count++
			break
		}
	}

	return cssdata.Compatibility{
		Supported: count >= MajorityThreshold,
		Browsers:  count,
		Flagged:   flagged,
		Support: &cssdata.BrowserSupport{
			Chrome:  support["chrome"],
			Firefox: support["firefox"],
			Safari:  support["safari"],
		},
	}
}

// KindFor maps a feature list and record to the kind it is checked as.
func KindFor(list cssdata.ListKind, rec cssdata.FeatureRecord) Kind {
	switch list {
	case cssdata.ListAtRules:
		return KindAtRule
	case cssdata.ListValues:
		if rec.IsFunction() {
			return KindFunction
		}
		return KindValue
	}
	return KindProperty
}
