package tracking

import (
	"context"
	"testing"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTracker struct{ info Info }

func (s stubTracker) Lookup(_ context.Context, number, carrier string) Info {
	info := s.info
	info.TrackingNumber, info.Carrier = number, carrier
	return info
}

func TestPackageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewService(testutil.NewDB(t), nil, stubTracker{}, WithClock(clock))

	pkg, err := s.CreatePackage(ctx, PackageInput{TrackingNumber: " 1Z42 ", Carrier: "UPS", Destination: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, "1Z42", pkg.TrackingNumber)
	assert.Equal(t, models.PackagePending, pkg.Status)
	require.Len(t, pkg.History, 1)

	_, err = s.CreatePackage(ctx, PackageInput{TrackingNumber: "1Z42"})
	assert.ErrorIs(t, err, ErrDuplicateTrackingNumber)
	_, err = s.CreatePackage(ctx, PackageInput{})
	assert.ErrorIs(t, err, ErrTrackingNumberRequired)

	_, err = s.UpdateStatus(ctx, pkg.ID, models.PackageInTransit, "Mumbai hub", "Departed")
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, pkg.ID, models.PackageInTransit, "Nashik", "Scanned")
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, pkg.ID, models.PackageDelivered, "Pune", "Signed by R.")
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, pkg.ID, models.PackageInTransit, "", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = s.UpdateStatus(ctx, 999, models.PackageInTransit, "", "")
	assert.ErrorIs(t, err, ErrPackageNotFound)

	stored, err := s.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PackageDelivered, stored.Status)
	require.Len(t, stored.History, 4)
	statuses := []models.PackageStatus{}
	for _, e := range stored.History {
		statuses = append(statuses, e.Status)
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, []models.PackageStatus{
		models.PackagePending, models.PackageInTransit, models.PackageInTransit, models.PackageDelivered,
	}, statuses)
	assert.Equal(t, "Nashik", stored.History[2].Location)

	list, err := s.ListPackages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeletePackage(ctx, pkg.ID))
	assert.ErrorIs(t, s.DeletePackage(ctx, pkg.ID), ErrPackageNotFound)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	live := stubTracker{info: Info{Status: StatusOutForDelivery, Events: []Event{
		{Description: "With courier", Location: "Pune"},
	}}}
	s := NewService(testutil.NewDB(t), nil, live, WithClock(clock))

	pkg, err := s.CreatePackage(ctx, PackageInput{TrackingNumber: "1Z42"})
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, pkg.ID, models.PackageInTransit, "", "")
	require.NoError(t, err)

	synced, info, err := s.Sync(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, info.Status)
	assert.Equal(t, models.PackageOutForDelivery, synced.Status)
	assert.Equal(t, "With courier", synced.History[len(synced.History)-1].Details)

	again, _, err := s.Sync(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, again.History, len(synced.History), "unchanged status adds no event")

	mocked := NewService(s.db, nil, stubTracker{info: Info{Status: StatusDelivered, IsMock: true}})
	unchanged, info, err := mocked.Sync(ctx, pkg.ID)
	require.NoError(t, err)
	assert.True(t, info.IsMock)
	assert.Equal(t, models.PackageOutForDelivery, unchanged.Status)
}
