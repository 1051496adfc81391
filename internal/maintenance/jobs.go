package maintenance

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/admin"
	"github.com/angelmondragon/bazaar-backend/internal/likes"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
)

// TaxonomyRecountJob rebuilds category and subcategory counters.
type TaxonomyRecountJob struct {
	svc *admin.TaxonomyService
}

func NewTaxonomyRecountJob(svc *admin.TaxonomyService) *TaxonomyRecountJob {
	return &TaxonomyRecountJob{svc: svc}
}

func (j *TaxonomyRecountJob) Name() string { return "taxonomy_recount" }

func (j *TaxonomyRecountJob) Run(ctx context.Context) (int64, error) {
	result, err := j.svc.Recount(ctx)
	if err != nil {
		return 0, err
	}
	return result.Changed, nil
}

// LikesReconcileJob rewrites products.likes_count from product_likes.
type LikesReconcileJob struct {
	db   *db.Client
	repo *likes.Repository
}

func NewLikesReconcileJob(client *db.Client, repo *likes.Repository) *LikesReconcileJob {
	return &LikesReconcileJob{db: client, repo: repo}
}

func (j *LikesReconcileJob) Name() string { return "likes_reconcile" }

func (j *LikesReconcileJob) Run(ctx context.Context) (int64, error) {
	var changed int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		changed, err = j.repo.WithTx(tx).Reconcile(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reconcile likes: %w", err)
	}
	return changed, nil
}
