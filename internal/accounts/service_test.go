package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian-books/internal/coa"
)

type memoryChartRepo struct {
	rows    map[string][]coa.Account // tenant -> accounts in insert order
	failing bool
}

func newMemoryChartRepo() *memoryChartRepo {
	return &memoryChartRepo{rows: make(map[string][]coa.Account)}
}

func (r *memoryChartRepo) ListAccounts(ctx context.Context, tenant string) ([]coa.Account, error) {
	return append([]coa.Account(nil), r.rows[tenant]...), nil
}

func (r *memoryChartRepo) InsertAccount(ctx context.Context, tenant string, a coa.Account) error {
	if r.failing {
		return errors.New("storage down")
	}
	r.rows[tenant] = append(r.rows[tenant], a)
	return nil
}

func (r *memoryChartRepo) UpdateAccount(ctx context.Context, tenant string, a coa.Account) error {
	if r.failing {
		return errors.New("storage down")
	}
	for i := range r.rows[tenant] {
		if r.rows[tenant][i].Code == a.Code {
			r.rows[tenant][i] = a
			return nil
		}
	}
	return coa.ErrUnknownAccount
}

func (r *memoryChartRepo) DeleteAccounts(ctx context.Context, tenant string, codes []string) error {
	if r.failing {
		return errors.New("storage down")
	}
	doomed := make(map[string]bool, len(codes))
	for _, c := range codes {
		doomed[c] = true
	}
	kept := r.rows[tenant][:0]
	for _, a := range r.rows[tenant] {
		if !doomed[a.Code] {
			kept = append(kept, a)
		}
	}
	r.rows[tenant] = kept
	return nil
}

type staticProbe map[string]bool

func (p staticProbe) HasPostings(ctx context.Context, tenant, code string) (bool, error) {
	return p[code], nil
}

func TestCreatePersistsSyntheticRootAndChild(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	acc, err := svc.Create(context.Background(), "primary", coa.AddInput{
		ParentCode: "1000",
		Name:       "Cash",
	})
	require.NoError(t, err)
	require.Equal(t, "10001", acc.Code)
	require.Len(t, repo.rows["primary"], 2) // root + child

	// A fresh service must rebuild the same chart from persistence.
	reloaded := NewService(repo, staticProbe{})
	accounts, err := reloaded.List(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "1000", accounts[0].Code)
	require.Equal(t, "10001", accounts[1].Code)
}

func TestRejectedCreateDoesNotStrandSyntheticRoot(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	_, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	// Duplicate name under the not-yet-created equity root: refused, and the
	// root must not appear in memory or storage.
	_, err = svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "3000", Name: "cash"})
	require.ErrorIs(t, err, coa.ErrDuplicateName)
	require.Len(t, repo.rows["primary"], 2)

	// The next create under that root persists the root row as well, so a
	// cold reload still resolves every parent.
	acc, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "3000", Name: "Share Capital"})
	require.NoError(t, err)
	require.Len(t, repo.rows["primary"], 4)

	reloaded := NewService(repo, staticProbe{})
	accounts, err := reloaded.List(context.Background(), "primary")
	require.NoError(t, err)
	codes := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		codes[a.Code] = true
	}
	require.True(t, codes["3000"])
	require.True(t, codes[acc.Code])
}

func TestCreateFailedPersistInvalidatesCache(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	_, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	repo.failing = true
	_, err = svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Bank"})
	require.Error(t, err)
	repo.failing = false

	// The rejected account must not survive the reload.
	accounts, err := svc.List(context.Background(), "primary")
	require.NoError(t, err)
	for _, a := range accounts {
		require.NotEqual(t, "Bank", a.Name)
	}
}

func TestTenantsAreIsolated(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	_, err := svc.Create(context.Background(), "north", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "south", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	north, err := svc.List(context.Background(), "north")
	require.NoError(t, err)
	south, err := svc.List(context.Background(), "south")
	require.NoError(t, err)
	require.Len(t, north, 2)
	require.Len(t, south, 2)
}

func TestDeleteGuardedByPostingsProbe(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{"10001": true})

	_, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "primary", "10001", false)
	require.ErrorIs(t, err, coa.ErrHasPostings)

	// Still present.
	accounts, err := svc.List(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestSnapshotIsIndependentOfLiveTree(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	_, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), "primary")
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	_, err = svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Bank"})
	require.NoError(t, err)

	// The snapshot does not see the later mutation.
	require.Equal(t, 2, snap.Len())
	_, ok := snap.Lookup("10002")
	require.False(t, ok)
}

func TestUpdateRejectsImmutableFieldWithoutPersisting(t *testing.T) {
	repo := newMemoryChartRepo()
	svc := NewService(repo, staticProbe{})

	_, err := svc.Create(context.Background(), "primary", coa.AddInput{ParentCode: "1000", Name: "Cash"})
	require.NoError(t, err)

	other := "5000"
	_, err = svc.Update(context.Background(), "primary", "10001", coa.UpdatePatch{ParentCode: &other})
	require.ErrorIs(t, err, coa.ErrImmutableField)

	accounts, err := svc.List(context.Background(), "primary")
	require.NoError(t, err)
	require.Equal(t, "1000", accounts[1].ParentCode)
}
