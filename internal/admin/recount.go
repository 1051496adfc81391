// Package admin holds operator-only maintenance operations.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/taxonomy"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"gorm.io/gorm"
)

// RecountResult reports how many taxonomy nodes had drifted.
type RecountResult struct {
	Changed int64 `json:"changed"`
	TookMS  int64 `json:"took_ms"`
}

// TaxonomyService rebuilds derived taxonomy counters from live product rows.
type TaxonomyService struct {
	db   *db.Client
	logg *logger.Logger
}

func NewTaxonomyService(client *db.Client, logg *logger.Logger) (*TaxonomyService, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &TaxonomyService{db: client, logg: logg}, nil
}

// Recount recomputes every subcategory, then every category, in one
// transaction.
func (s *TaxonomyService) Recount(ctx context.Context) (RecountResult, error) {
	started := time.Now()
	var changed int64
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		changed, err = taxonomy.RecountAll(ctx, tx)
		return err
	})
	if err != nil {
		return RecountResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recount taxonomy")
	}

	took := time.Since(started)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"changed": changed, "took_ms": took.Milliseconds()})
		if changed > 0 {
			s.logg.Warn(ctx, "taxonomy.recount_healed_drift")
		} else {
			s.logg.Info(ctx, "taxonomy.recount_clean")
		}
	}
	return RecountResult{Changed: changed, TookMS: took.Milliseconds()}, nil
}
