package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vbgateway/internal/price"
	"vbgateway/kit/db"
)

func TestInMemoryRepository_CreateAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewInMemoryRepository()

	p := &Payment{
		ID:           "p1",
		OrderID:      "o1",
		GatewayID:    "vb_main",
		State:        StatusAuthorization,
		Amount:       price.New("100.00", "MDL"),
		RemoteID:     "R1|I1",
		AuthorizedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, p))
	require.ErrorIs(t, repo.Create(ctx, p), db.ErrConflict)

	got, err := repo.LoadUnchanged(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, p, got)

	// LoadUnchanged returns a copy, the stored record is isolated.
	got.State = StatusCompleted
	again, err := repo.LoadUnchanged(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, StatusAuthorization, again.State)
}

func TestInMemoryRepository_LoadUnchangedMissing(t *testing.T) {
	t.Parallel()
	repo := NewInMemoryRepository()
	_, err := repo.LoadUnchanged(context.Background(), "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestInMemoryRepository_QueryByRemoteIDPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, &Payment{ID: "p1", OrderID: "o1", GatewayID: "vb_main", State: StatusCompleted, RemoteID: "R1|I2|I1"}))
	require.NoError(t, repo.Create(ctx, &Payment{ID: "p2", OrderID: "o2", GatewayID: "vb_main", State: StatusAuthorization, RemoteID: "R2|I9"}))
	require.NoError(t, repo.Create(ctx, &Payment{ID: "p3", OrderID: "o3", GatewayID: "vb_other", State: StatusAuthorization, RemoteID: "R1|I5"}))

	var tests = []struct {
		name       string
		prefix     string
		gatewayIDs []string
		expected   []string
	}{
		{name: "rrn prefix match", prefix: "R1|", gatewayIDs: []string{"vb_main"}, expected: []string{"p1"}},
		{name: "full remote id prefix", prefix: "R1|I2", gatewayIDs: []string{"vb_main"}, expected: []string{"p1"}},
		{name: "scoped to gateway", prefix: "R1|", gatewayIDs: []string{"vb_other"}, expected: []string{"p3"}},
		{name: "both gateways", prefix: "R1|", gatewayIDs: []string{"vb_main", "vb_other"}, expected: []string{"p1", "p3"}},
		{name: "no match", prefix: "R9|", gatewayIDs: []string{"vb_main"}, expected: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := repo.QueryByRemoteIDPrefix(ctx, tt.prefix, tt.gatewayIDs)
			require.NoError(t, err)
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			require.ElementsMatch(t, tt.expected, ids)
		})
	}
}

func TestInMemoryRepository_QueryByOrderID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, &Payment{ID: "p1", OrderID: "o1", GatewayID: "vb_main", RemoteID: "R1|I1"}))
	require.NoError(t, repo.Create(ctx, &Payment{ID: "p2", OrderID: "o1", GatewayID: "vb_other", RemoteID: "R2|I2"}))

	got, err := repo.QueryByOrderID(ctx, "o1", "vb_main")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)

	got, err = repo.QueryByOrderID(ctx, "o9", "vb_main")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()
	require.False(t, StatusAuthorization.Terminal())
	require.False(t, StatusCompleted.Terminal())
	require.True(t, StatusRefunded.Terminal())
	require.True(t, StatusAuthorizationVoided.Terminal())
}
