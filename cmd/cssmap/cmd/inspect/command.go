// Package inspect provides the inspect command, a debug view of the
// written dataset.
package inspect

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/emoji"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/cmd/table"
	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

const (
	defaultSpec     = "css-color-3"
	defaultProperty = "color"
)

// Report is what inspect prints.
type Report struct {
	Spec       string   `json:"spec" yaml:"spec"`
	Found      bool     `json:"found" yaml:"found"`
	Keys       []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
	AtRules    []string `json:"atrules,omitempty" yaml:"atrules,omitempty"`
	Values     []string `json:"values,omitempty" yaml:"values,omitempty"`
	Property   string   `json:"property" yaml:"property"`
	DefinedIn  []string `json:"defined_in" yaml:"defined_in"`
}

// NewCommand creates the inspect command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		file     string
		property string
		features bool
	)

	cmd := &cobra.Command{
		Use:     "inspect [shortname]",
		GroupID: "validation",
		Short:   "Show one specification's entry in css-data.json",
		Long: `Inspect prints the keys and feature names of one specification in
css-data.json, then lists every specification that defines a property.
With --features, it lists the specification's feature records instead.`,
		Example: `  cssmap inspect
  cssmap inspect css-grid-2 --property gap
  cssmap inspect css-color-4 --features -o wide`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := defaultSpec
			if len(args) == 1 {
				spec = args[0]
			}
			if file == "" {
				file = filepath.Join(app.PipelineConfig().OutputDir, constants.DataFile)
			}
			ds, err := persistence.ReadDataset(file)
			if err != nil {
				app.Logger().Error().Err(err).Str("file", file).Msg("Failed to read dataset")
				return err
			}

			format := output.Format(app.OutputFormat())
			if features {
				return WriteFeatures(cmd.OutOrStdout(), format, ds, spec)
			}

			report := Build(ds, spec, property)
			if format.IsTable() {
				Print(cmd.OutOrStdout(), report)
				return nil
			}
			return output.Write(cmd.OutOrStdout(), format, report, nil)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "dataset to read (default <output-dir>/css-data.json)")
	cmd.Flags().StringVar(&property, "property", defaultProperty, "property to search for across all specifications")
	cmd.Flags().BoolVar(&features, "features", false, "list the specification's feature records")
	return cmd
}

// Build inspects spec in ds and searches every specification for property.
func Build(ds cssdata.Dataset, spec, property string) Report {
	report := Report{Spec: spec, Property: property}

	if data, ok := ds[spec]; ok && data != nil {
		report.Found = true
		report.Keys = data.Keys()
		report.Properties = names(data.Properties)
		report.AtRules = names(data.AtRules)
		report.Values = names(data.Values)
	}

	report.DefinedIn = catalog.New(ds, nil).SpecsWithProperty(property)
	if report.DefinedIn == nil {
		report.DefinedIn = []string{}
	}
	return report
}

// WriteFeatures writes the feature records of spec. An unknown spec is a
// not-found error.
func WriteFeatures(w io.Writer, format output.Format, ds cssdata.Dataset, spec string) error {
	c := catalog.New(ds, nil)
	if _, ok := c.Spec(spec); !ok {
		return errors.NewNotFoundError("specification", spec)
	}
	items := c.SpecItems(spec)
	return output.Write(w, format, items, func(wide bool) table.Data {
		return table.ItemsToTableData(items, wide)
	})
}

func names(records []cssdata.FeatureRecord) []string {
	if records == nil {
		return nil
	}
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Name
	}
	return out
}

// Print writes the report as text.
func Print(w io.Writer, r Report) {
	if !r.Found {
		_, _ = fmt.Fprintf(w, "%s No data found for %s\n", emoji.Error, r.Spec)
	} else {
		_, _ = fmt.Fprintf(w, "%s Found data for %s\n", emoji.Success, r.Spec)
		_, _ = fmt.Fprintf(w, "Keys: %s\n", strings.Join(r.Keys, ", "))
		if r.Properties == nil {
			_, _ = fmt.Fprintln(w, "No properties found in spec data")
		} else {
			printList(w, "Properties", r.Properties)
		}
		if r.AtRules != nil {
			printList(w, "At-rules", r.AtRules)
		}
		if r.Values != nil {
			printList(w, "Values/Functions", r.Values)
		}
	}

	_, _ = fmt.Fprintf(w, "\nSearching for %q property...\n", r.Property)
	if len(r.DefinedIn) == 0 {
		_, _ = fmt.Fprintf(w, "%s Not defined in any specification\n", emoji.Warning)
	}
	for _, spec := range r.DefinedIn {
		_, _ = fmt.Fprintf(w, "Found %q in %s\n", r.Property, spec)
	}
}

func printList(w io.Writer, label string, items []string) {
	_, _ = fmt.Fprintf(w, "%s (%d): %s\n", label, len(items), strings.Join(items, ", "))
}
