package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ModelRepo читает веса проекционных моделей из бакета MinIO.
type ModelRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewModelRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ModelRepo {
	return &ModelRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// GetModel возвращает содержимое объекта name.
func (m *ModelRepo) GetModel(ctx context.Context, name string) ([]byte, error) {
	obj, err := m.mc.GetObject(ctx, m.cfg.BucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %s/%s", e.ErrModelNotFound, m.cfg.BucketName, name))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}
