package scheduler

import (
	"testing"

	"github.com/Dias221467/cometa-films-backend/internal/jobs"
	"github.com/Dias221467/cometa-films-backend/internal/repository/memstore"
	"github.com/Dias221467/cometa-films-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	store := memstore.New()
	reconciler := jobs.NewFollowReconciler(services.NewSocialService(store, store, nil, nil))
	purger := jobs.NewNotificationPurger(store)

	c, err := Start("0 3 * * *", reconciler, purger)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)

	_, err = Start("every night", reconciler, purger)
	assert.Error(t, err)
}
