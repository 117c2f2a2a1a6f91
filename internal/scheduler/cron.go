package scheduler

import (
	"context"
	"fmt"

	"github.com/Dias221467/cometa-films-backend/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PurgeSchedule removes expired notifications.
const PurgeSchedule = "@hourly"

// Start registers the background jobs and starts the scheduler. The caller
// stops it on shutdown.
func Start(reconcileSchedule string, reconciler *jobs.FollowReconciler, purger *jobs.NotificationPurger) (*cron.Cron, error) {
	c := cron.New()

	// Follow graph repair
	if _, err := c.AddFunc(reconcileSchedule, func() {
		if _, err := reconciler.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Follow reconciliation failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", reconcileSchedule, err)
	}

	// Expired notifications
	if _, err := c.AddFunc(PurgeSchedule, func() {
		if _, err := purger.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Notification purge failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid purge schedule: %w", err)
	}

	c.Start()
	logrus.WithField("reconcileSchedule", reconcileSchedule).Info("Scheduler started")
	return c, nil
}
