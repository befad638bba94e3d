package coordinator

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tabprofile/internal/errors"
	"github.com/hpungsan/tabprofile/internal/profile"
	"github.com/hpungsan/tabprofile/internal/tabs"
)

var errBoom = stderrors.New("boom")

func failOn(target string) func(op string) error {
	return func(op string) error {
		if op == target {
			return errBoom
		}
		return nil
	}
}

func TestStorageGetFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := newTestCoordinator(t, store, tabs.NewMemory())
	mustCreate(t, c, "work")

	store.setFailures(errBoom, nil)

	_, err := c.State(ctx)
	requireCode(t, err, errors.ErrInfrastructure)
	require.ErrorIs(t, err, errBoom)

	_, err = c.Create(ctx, "home")
	requireCode(t, err, errors.ErrInfrastructure)

	store.setFailures(nil, nil)
	require.Len(t, mustState(t, c).Profiles, 1)
}

func TestStorageCorruptValue(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(t, store, tabs.NewMemory())
	store.data[ProfilesKey] = []byte("{not json")

	_, err := c.State(context.Background())
	requireCode(t, err, errors.ErrInfrastructure)
}

func TestActivate_StorageSetFailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	window := tabs.NewMemory("https://base.com")
	c := newTestCoordinator(t, store, window)
	mustCreate(t, c, "work", tabA)

	store.setFailures(nil, errBoom)
	requireCode(t, c.Activate(ctx, "work"), errors.ErrInfrastructure)
	store.setFailures(nil, nil)

	require.Equal(t, []profile.Tab{{URL: "https://base.com"}}, windowTabs(t, window))
	require.Nil(t, mustState(t, c).CurrentProfile)
	require.False(t, c.sess.hasOriginal)

	// The next command works from a clean slate
	require.NoError(t, c.Activate(ctx, "work"))
	require.NoError(t, c.Deactivate(ctx))
	require.Equal(t, []profile.Tab{{URL: "https://base.com"}}, windowTabs(t, window))
}

func TestActivate_QueryFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	window := tabs.NewMemory("https://base.com")
	c := newTestCoordinator(t, store, window)
	mustCreate(t, c, "work", tabA)

	window.Fail = failOn(tabs.OpQuery)
	requireCode(t, c.Activate(ctx, "work"), errors.ErrInfrastructure)
	window.Fail = nil

	require.Equal(t, 0, persisted(t, store).ActiveCount())
	require.Nil(t, mustState(t, c).CurrentProfile)
}

func TestActivate_CreateFailureStillDeactivates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	window := tabs.NewMemory("https://x.com", "https://y.com")
	c := newTestCoordinator(t, store, window)
	mustCreate(t, c, "work", tabA, tabB)

	window.Fail = failOn(tabs.OpCreate)
	err := c.Activate(ctx, "work")
	requireCode(t, err, errors.ErrInfrastructure)
	require.ErrorIs(t, err, errBoom)
	window.Fail = nil

	// The switch is recorded even though the window is incomplete
	require.Equal(t, "work", mustState(t, c).Current())

	require.NoError(t, c.Deactivate(ctx))
	require.Equal(t, []profile.Tab{{URL: "https://x.com"}, {URL: "https://y.com"}}, windowTabs(t, window))
}

func TestDeactivate_StorageSetFailureKeepsProfileActive(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	window := tabs.NewMemory("https://base.com")
	c := newTestCoordinator(t, store, window)
	mustCreate(t, c, "work", tabA)
	require.NoError(t, c.Activate(ctx, "work"))

	store.setFailures(nil, errBoom)
	requireCode(t, c.Deactivate(ctx), errors.ErrInfrastructure)
	store.setFailures(nil, nil)

	require.Equal(t, "work", mustState(t, c).Current())
	require.True(t, c.sess.hasOriginal)
	require.Equal(t, []profile.Tab{tabA}, windowTabs(t, window))

	require.NoError(t, c.Deactivate(ctx))
	require.Equal(t, []profile.Tab{{URL: "https://base.com"}}, windowTabs(t, window))
}

func TestDelete_StorageSetFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := newTestCoordinator(t, store, tabs.NewMemory("https://base.com"))
	mustCreate(t, c, "work", tabA)
	require.NoError(t, c.Activate(ctx, "work"))

	store.setFailures(nil, errBoom)
	requireCode(t, c.Delete(ctx, "work"), errors.ErrInfrastructure)
	store.setFailures(nil, nil)

	require.Equal(t, "work", mustState(t, c).Current())
	require.True(t, c.sess.hasOriginal)
}

func TestDispatch_InfrastructureResponse(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(t, store, tabs.NewMemory())
	store.setFailures(errBoom, nil)

	resp := c.Dispatch(context.Background(), Command{Action: ActionGetState})
	require.False(t, resp.Success)
	require.Equal(t, errors.ErrInfrastructure, resp.Code)
	require.Contains(t, resp.Error, "storage get failed")
}
