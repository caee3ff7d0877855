// Package filesystem читает веса моделей из локального каталога.
// Используется, когда MinIO не развёрнут (MODEL_SOURCE=local).
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

type ModelRepo struct {
	dir string
}

func NewModelRepo(dir string) *ModelRepo {
	return &ModelRepo{dir: dir}
}

// GetModel читает файл name из каталога моделей. Имена с разделителями пути не допускаются.
func (m *ModelRepo) GetModel(_ context.Context, name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %q", e.ErrModelNotFound, name))
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %s", e.ErrModelNotFound, filepath.Join(m.dir, name)))
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}
