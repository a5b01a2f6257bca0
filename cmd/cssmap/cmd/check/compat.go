package check

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/cmd/table"
	"github.com/agentstation/cssmap/internal/validation"
	"github.com/agentstation/cssmap/pkg/compat"
	"github.com/agentstation/cssmap/pkg/errors"
)

func newCompatCommand(app appcontext.Interface) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "compat [feature...]",
		Short: "Probe the compatibility data with known features",
		Long: `Compat loads the browser compatibility data and prints the verdict for
each feature. Without arguments it probes a fixed set covering every
lookup path (properties, at-rules, types, and color functions).

The kind of each feature is inferred from its name: a leading @ is an
at-rule, a trailing () is a function, anything else is a property.
Use --kind to override.`,
		Example: `  cssmap check compat
  cssmap check compat gap @container "oklch()"
  cssmap check compat --kind value "<length>"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			probes, err := ParseProbes(args, kind)
			if err != nil {
				return err
			}
			return RunCompat(app, probes, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "feature kind: property, at-rule, value, function")
	return cmd
}

// ParseProbes builds probes from feature names. No names means the defaults.
func ParseProbes(names []string, kind string) ([]validation.Probe, error) {
	if len(names) == 0 {
		return nil, nil
	}
	switch compat.Kind(kind) {
	case "", compat.KindProperty, compat.KindAtRule, compat.KindValue, compat.KindFunction:
	default:
		return nil, errors.NewValidationError("kind", kind, "must be one of: property, at-rule, value, function")
	}

	probes := make([]validation.Probe, 0, len(names))
	for _, name := range names {
		k := compat.Kind(kind)
		if k == "" {
			k = inferKind(name)
		}
		probes = append(probes, validation.Probe{Name: name, Kind: k})
	}
	return probes, nil
}

func inferKind(name string) compat.Kind {
	switch {
	case strings.HasPrefix(name, "@"):
		return compat.KindAtRule
	case strings.HasSuffix(name, "()"):
		return compat.KindFunction
	default:
		return compat.KindProperty
	}
}

// RunCompat loads the configured compatibility data and prints the probes.
func RunCompat(app appcontext.Interface, probes []validation.Probe, w io.Writer) error {
	path := app.PipelineConfig().CompatData
	data, err := compat.LoadFile(path)
	if err != nil {
		app.Logger().Error().Err(err).Str("file", path).Msg("Failed to load compatibility data")
		return err
	}

	results := validation.ProbeCompat(data, probes)
	return output.Write(w, output.Format(app.OutputFormat()), results, func(bool) table.Data {
		return table.ProbesToTableData(results)
	})
}
