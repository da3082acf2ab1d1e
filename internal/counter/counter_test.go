package counter

import (
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/internal/models"
	"github.com/dimitrije/taskboard/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCounter(t *testing.T) (*Counter, *testutil.MockStores) {
	t.Helper()
	stores := testutil.NewMockStores()
	return New(FromStores(stores.Stores()), nil), stores
}

func TestCounter_Refresh(t *testing.T) {
	c, stores := setupCounter(t)
	stores.Teams.On("Count", mock.Anything).Return(2, nil).Once()
	stores.Projects.On("Count", mock.Anything).Return(3, nil).Once()
	stores.Tasks.On("Count", mock.Anything).Return(5, nil).Once()
	stores.Users.On("Count", mock.Anything).Return(7, nil).Once()

	require.NoError(t, c.Refresh(context.Background()))

	assert.True(t, c.Loaded())
	assert.Equal(t, models.CountSnapshot{Teams: 2, Projects: 3, Tasks: 5, Users: 7}, c.Snapshot())
	stores.AssertExpectations(t)
}

func TestCounter_Refresh_PartialFailureKeepsPrevious(t *testing.T) {
	c, stores := setupCounter(t)
	stores.Teams.On("Count", mock.Anything).Return(2, nil).Once()
	stores.Projects.On("Count", mock.Anything).Return(3, nil).Once()
	stores.Tasks.On("Count", mock.Anything).Return(5, nil).Once()
	stores.Users.On("Count", mock.Anything).Return(7, nil).Once()
	require.NoError(t, c.Refresh(context.Background()))

	stores.Teams.On("Count", mock.Anything).Return(1, nil)
	stores.Projects.On("Count", mock.Anything).Return(0, &gateway.UnexpectedError{Op: "projects.count", Status: 500, Err: errors.New("boom")})
	stores.Tasks.On("Count", mock.Anything).Return(4, nil)
	stores.Users.On("Count", mock.Anything).Return(6, nil)

	err := c.Refresh(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "projects")
	assert.Equal(t, models.CountSnapshot{Teams: 2, Projects: 3, Tasks: 5, Users: 7}, c.Snapshot())
}

func TestCounter_Refresh_FailureBeforeFirstLoad(t *testing.T) {
	c, stores := setupCounter(t)
	stores.Teams.On("Count", mock.Anything).Return(0, &gateway.TransportError{Op: "teams.count", Err: errors.New("refused")})
	stores.Projects.On("Count", mock.Anything).Return(3, nil)
	stores.Tasks.On("Count", mock.Anything).Return(5, nil)
	stores.Users.On("Count", mock.Anything).Return(7, nil)

	err := c.Refresh(context.Background())

	assert.True(t, gateway.IsTransport(err))
	assert.False(t, c.Loaded())
	assert.Equal(t, models.CountSnapshot{}, c.Snapshot())
}

func TestCountSnapshot_Get(t *testing.T) {
	s := models.CountSnapshot{Teams: 1, Projects: 2, Tasks: 3, Users: 4}

	assert.Equal(t, 1, s.Get(models.KindTeams))
	assert.Equal(t, 4, s.Get(models.KindUsers))
}
