package services

import (
	"context"
	"errors"

	"volunvibe/app/models"
	"volunvibe/app/repositories"

	"go.uber.org/zap"
)

// ReconcileReport summarizes one orphan scan.
type ReconcileReport struct {
	Scanned   int      `json:"scanned"`
	Orphaned  int      `json:"orphaned"`
	Removed   int      `json:"removed"`
	OrphanIDs []string `json:"orphanIds"`
}

// Reconciler removes requests whose post no longer exists. Deleting a post
// never cascades, so orphans accumulate until this runs.
type Reconciler struct {
	store  repositories.Store
	logger *zap.Logger
}

func NewReconciler(store repositories.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger.Named("reconciler")}
}

// Run scans every request. With dryRun set, orphans are reported but kept.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	requests, err := r.store.Requests().List(ctx, models.RequestFilter{})
	if err != nil {
		return nil, storeError("failed to list requests", err)
	}

	report := &ReconcileReport{Scanned: len(requests), OrphanIDs: []string{}}
	exists := make(map[string]bool)
	for _, request := range requests {
		live, seen := exists[request.PostID]
		if !seen {
			live, err = r.postExists(ctx, request.PostID)
			if err != nil {
				return report, err
			}
			exists[request.PostID] = live
		}
		if live {
			continue
		}

		report.Orphaned++
		report.OrphanIDs = append(report.OrphanIDs, request.ID.Hex())
		if dryRun {
			continue
		}

		deleted, err := r.store.Requests().Delete(ctx, request.ID.Hex())
		if err != nil {
			return report, storeError("failed to delete orphaned request", err)
		}
		if deleted {
			report.Removed++
		}
		r.logger.Info("removed orphaned request",
			zap.String("request_id", request.ID.Hex()),
			zap.String("post_id", request.PostID),
		)
	}
	return report, nil
}

func (r *Reconciler) postExists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Posts().GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, models.ErrInvalidID):
		return false, nil
	default:
		return false, storeError("failed to look up post", err)
	}
}
