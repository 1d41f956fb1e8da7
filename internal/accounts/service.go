// Package accounts owns the chart of accounts service: one coa.Tree per
// tenant, guarded by a single writer lock, persisted through Postgres.
package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridian-books/meridian-books/internal/coa"
)

// RepositoryPort defines persistence for chart snapshots and mutations.
type RepositoryPort interface {
	ListAccounts(ctx context.Context, tenant string) ([]coa.Account, error)
	InsertAccount(ctx context.Context, tenant string, account coa.Account) error
	UpdateAccount(ctx context.Context, tenant string, account coa.Account) error
	DeleteAccounts(ctx context.Context, tenant string, codes []string) error
}

// PostingsProbe reports ledger activity for delete/update guards.
// Implemented by the vouchers service.
type PostingsProbe interface {
	HasPostings(ctx context.Context, tenant, accountCode string) (bool, error)
}

// CacheBumper invalidates derived report caches after a mutation.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service keeps per-tenant trees in memory and synchronises all access. The
// tree itself provides no locking; this service is the required single
// writer. Every operation takes the exclusive lock because any of them may
// lazily load a tenant's tree into the map.
type Service struct {
	repo   RepositoryPort
	probe  PostingsProbe
	bumper CacheBumper

	mu    sync.Mutex
	trees map[string]*coa.Tree
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, probe PostingsProbe) *Service {
	return &Service{
		repo:  repo,
		probe: probe,
		trees: make(map[string]*coa.Tree),
	}
}

// SetCacheBumper attaches report cache invalidation. Wired after
// construction because the reports service depends on this one.
func (s *Service) SetCacheBumper(bumper CacheBumper) {
	s.bumper = bumper
}

// bumpCache signals that cached reports derived from this chart are stale.
// Failure only delays invalidation until the cache TTL expires.
func (s *Service) bumpCache(ctx context.Context) {
	if s.bumper != nil {
		_ = s.bumper.Bump(ctx)
	}
}

// treeLocked returns the cached tree for a tenant, loading it from the
// repository on first use. Callers must hold mu (read or write).
func (s *Service) treeLocked(ctx context.Context, tenant string) (*coa.Tree, error) {
	if tree, ok := s.trees[tenant]; ok {
		return tree, nil
	}
	accounts, err := s.repo.ListAccounts(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("accounts: load chart for %s: %w", tenant, err)
	}
	tree, err := coa.BuildTree(tenant, accounts)
	if err != nil {
		return nil, err
	}
	s.trees[tenant] = tree
	return tree, nil
}

// invalidateLocked drops the cached tree so the next call reloads from the
// repository. Used when a persisted mutation failed after the in-memory
// tree already changed.
func (s *Service) invalidateLocked(tenant string) {
	delete(s.trees, tenant)
}

// hasPostingsFunc adapts the probe to the tree's guard signature. A probe
// failure counts as "has postings": the guard must stay conservative.
func (s *Service) hasPostingsFunc(ctx context.Context, tenant string) func(string) bool {
	if s.probe == nil {
		return func(string) bool { return false }
	}
	return func(code string) bool {
		has, err := s.probe.HasPostings(ctx, tenant, code)
		if err != nil {
			return true
		}
		return has
	}
}

// List returns value copies of the tenant's chart in pre-order. Copies keep
// callers from holding references into the live tree after the lock drops.
func (s *Service) List(ctx context.Context, tenant string) ([]coa.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return nil, err
	}
	flat := tree.Flatten()
	out := make([]coa.Account, 0, len(flat))
	for _, a := range flat {
		out = append(out, withoutChildren(a))
	}
	return out, nil
}

// Snapshot returns an independent copy of the tenant's tree for derivation.
// Derivations read the snapshot free of the service lock, so a concurrent
// mutation can never corrupt a running report.
func (s *Service) Snapshot(ctx context.Context, tenant string) (*coa.Tree, error) {
	s.mu.Lock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	flat := tree.Flatten()
	accounts := make([]coa.Account, 0, len(flat))
	for _, a := range flat {
		copied := *a
		copied.Children = nil
		accounts = append(accounts, copied)
	}
	tenantID := tree.Tenant()
	s.mu.Unlock()
	return coa.BuildTree(tenantID, accounts)
}

// ResolveDetail looks up a code and returns the account. Voucher creation
// uses it to verify each line references an existing account; the caller
// checks the kind.
func (s *Service) ResolveDetail(ctx context.Context, tenant, code string) (*coa.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return nil, err
	}
	acc, ok := tree.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", coa.ErrUnknownAccount, code)
	}
	copied := *acc
	copied.Children = nil
	return &copied, nil
}

// Create adds an account under a parent and persists it.
func (s *Service) Create(ctx context.Context, tenant string, input coa.AddInput) (*coa.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return nil, err
	}
	_, hadParent := tree.Lookup(input.ParentCode)
	account, err := tree.Add(input)
	if err != nil {
		return nil, err
	}
	// Adding may have created a synthetic root as well; persist it first so
	// the child row never references a parent missing from storage.
	if !hadParent {
		if root, ok := tree.Lookup(account.ParentCode); ok {
			if err := s.repo.InsertAccount(ctx, tenant, withoutChildren(root)); err != nil {
				s.invalidateLocked(tenant)
				return nil, err
			}
		}
	}
	if err := s.repo.InsertAccount(ctx, tenant, withoutChildren(account)); err != nil {
		s.invalidateLocked(tenant)
		return nil, err
	}
	s.bumpCache(ctx)
	return account, nil
}

// Update patches an account and persists the result.
func (s *Service) Update(ctx context.Context, tenant, code string, patch coa.UpdatePatch) (*coa.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return nil, err
	}
	account, err := tree.Update(code, patch, coa.UpdateOptions{
		HasPostings: s.hasPostingsFunc(ctx, tenant),
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAccount(ctx, tenant, withoutChildren(account)); err != nil {
		s.invalidateLocked(tenant)
		return nil, err
	}
	s.bumpCache(ctx)
	return account, nil
}

// Delete removes an account, optionally cascading to its subtree.
func (s *Service) Delete(ctx context.Context, tenant, code string, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return err
	}
	node, ok := tree.Lookup(code)
	if !ok {
		return fmt.Errorf("%w: %s", coa.ErrUnknownAccount, code)
	}
	doomed := subtreeCodes(node)
	if err := tree.Delete(code, coa.DeleteOptions{
		Cascade:     cascade,
		HasPostings: s.hasPostingsFunc(ctx, tenant),
	}); err != nil {
		return err
	}
	if err := s.repo.DeleteAccounts(ctx, tenant, doomed); err != nil {
		s.invalidateLocked(tenant)
		return err
	}
	s.bumpCache(ctx)
	return nil
}

// Classify exposes ancestry-based classification for a tenant's account.
func (s *Service) Classify(ctx context.Context, tenant, code string) (coa.FundamentalType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return "", err
	}
	return tree.Classify(code)
}

// PathOf exposes the root-to-node name path for a tenant's account.
func (s *Service) PathOf(ctx context.Context, tenant, code string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.treeLocked(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return tree.PathOf(code), nil
}

func withoutChildren(a *coa.Account) coa.Account {
	copied := *a
	copied.Children = nil
	return copied
}

func subtreeCodes(node *coa.Account) []string {
	codes := []string{node.Code}
	for _, child := range node.Children {
		codes = append(codes, subtreeCodes(child)...)
	}
	return codes
}
