package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ReconcileTimeout bounds one pass over the follow graph.
const ReconcileTimeout = 10 * time.Minute

type edgeReconciler interface {
	ReconcileFollowEdges(ctx context.Context) (*services.ReconcileReport, error)
}

// FollowReconciler repairs one-sided follow edges left behind by follow or
// unfollow requests whose second write failed.
type FollowReconciler struct {
	Social edgeReconciler
}

// NewFollowReconciler creates a new instance of FollowReconciler
func NewFollowReconciler(social edgeReconciler) *FollowReconciler {
	return &FollowReconciler{Social: social}
}

// Run performs one repair pass.
func (f *FollowReconciler) Run(ctx context.Context) (*services.ReconcileReport, error) {
	ctx, cancel := context.WithTimeout(ctx, ReconcileTimeout)
	defer cancel()

	started := time.Now()
	report, err := f.Social.ReconcileFollowEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile follow edges: %w", err)
	}

	entry := logrus.WithFields(logrus.Fields{
		"duration":         time.Since(started).String(),
		"followersAdded":   report.FollowersAdded,
		"followersRemoved": report.FollowersRemoved,
		"failures":         report.Failures,
	})
	if report.Failures > 0 {
		entry.Warn("Follow reconciliation finished with failures")
	} else {
		entry.Info("Follow reconciliation completed")
	}
	return report, nil
}
