package validation

import (
	"github.com/agentstation/cssmap/pkg/compat"
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Probe is a feature looked up to sanity-check the compatibility data.
type Probe struct {
	Name string      `json:"name" yaml:"name"`
	Kind compat.Kind `json:"kind" yaml:"kind"`
}

// DefaultProbes cover each lookup path: properties, at-rules, types,
// types.color, and a feature too new to be in most datasets.
var DefaultProbes = []Probe{
	{Name: "color", Kind: compat.KindProperty},
	{Name: "display", Kind: compat.KindProperty},
	{Name: "@media", Kind: compat.KindAtRule},
	{Name: "calc()", Kind: compat.KindFunction},
	{Name: "rgb()", Kind: compat.KindFunction},
	{Name: "cos()", Kind: compat.KindFunction},
	{Name: "if()", Kind: compat.KindFunction},
}

// ProbeResult is the verdict for one probe.
type ProbeResult struct {
	Name      string      `json:"name" yaml:"name"`
	Kind      compat.Kind `json:"kind" yaml:"kind"`
	Supported bool        `json:"supported" yaml:"supported"`
	Browsers  int         `json:"browsers" yaml:"browsers"`
	Flagged   bool        `json:"flagged" yaml:"flagged"`
}

// ProbeCompat checks each probe against checker. Nil probes means DefaultProbes.
func ProbeCompat(checker compat.Checker, probes []Probe) []ProbeResult {
	if probes == nil {
		probes = DefaultProbes
	}
	results := make([]ProbeResult, 0, len(probes))
	for _, p := range probes {
		c := checker.Check(p.Name, p.Kind)
		results = append(results, resultFor(p, c))
	}
	return results
}

func resultFor(p Probe, c cssdata.Compatibility) ProbeResult {
	return ProbeResult{
		Name:      p.Name,
		Kind:      p.Kind,
		Supported: c.Supported,
		Browsers:  c.Browsers,
		Flagged:   c.Flagged,
	}
}
