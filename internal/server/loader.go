package server

import (
	"path/filepath"

	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/errors"
)

// DirLoader loads the catalog from the artifacts in Dir.
type DirLoader struct {
	Dir string
}

// Load reads css-data.json and, when present, specs.json.
func (l DirLoader) Load() (*catalog.Catalog, error) {
	ds, err := persistence.ReadDataset(filepath.Join(l.Dir, constants.DataFile))
	if err != nil {
		return nil, err
	}

	specs, err := persistence.ReadSpecs(filepath.Join(l.Dir, constants.SpecsFile))
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	return catalog.New(ds, specs), nil
}
