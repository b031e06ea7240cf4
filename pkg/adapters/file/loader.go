package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
)

var definitionExts = []string{".yaml", ".yml", ".json"}

// Loader implements ports.DefinitionLoader over a directory holding one
// <app id>.yaml (or .yml, .json) file per application.
type Loader struct {
	Dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load returns the raw definition of appID.
func (l *Loader) Load(ctx context.Context, appID string) ([]byte, error) {
	if validID(appID) != nil || strings.HasPrefix(appID, ".") {
		return nil, fmt.Errorf("%w: invalid id %q", domain.ErrAppNotFound, appID)
	}
	for _, ext := range definitionExts {
		data, err := os.ReadFile(filepath.Join(l.Dir, appID+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read app definition: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrAppNotFound, appID)
}

// List returns the app ids found in the directory.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read apps directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if slices.Contains(definitionExts, strings.ToLower(ext)) {
			ids = append(ids, strings.TrimSuffix(e.Name(), ext))
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
