package coa

import (
	"fmt"
	"strings"
	"time"
)

// syntheticRoots are the well-known top-level group codes. A caller may add
// an account under one of these before the root itself exists; the tree
// creates the root on demand so every tenant starts from the same skeleton.
var syntheticRoots = map[string]string{
	"1000": "Assets",
	"2000": "Liabilities",
	"3000": "Equity",
	"4000": "Revenue",
	"5000": "Expenses",
}

// Tree is one tenant's chart of accounts. Mutations require external mutual
// exclusion (a single writer); read-only traversal and derivation may run
// concurrently with other reads.
type Tree struct {
	tenant  string
	roots   []*Account
	byCode  map[string]*Account
	byName  map[string]string // lower(name) -> code
	nowFunc func() time.Time
}

// NewTree creates an empty chart for a tenant.
func NewTree(tenant string) *Tree {
	return &Tree{
		tenant:  tenant,
		byCode:  make(map[string]*Account),
		byName:  make(map[string]string),
		nowFunc: time.Now,
	}
}

// WithNow overrides the clock used for created/updated stamps.
func (t *Tree) WithNow(now func() time.Time) {
	if now != nil {
		t.nowFunc = now
	}
}

// Tenant returns the tenant the tree is scoped to.
func (t *Tree) Tenant() string {
	return t.tenant
}

// BuildTree assembles a tree from a flat account list. Parents must appear
// before children or be resolvable after the full pass; ordering inside a
// parent follows the input slice. Duplicate codes and names are rejected so
// a corrupted snapshot never becomes a working chart.
func BuildTree(tenant string, accounts []Account) (*Tree, error) {
	t := NewTree(tenant)
	for i := range accounts {
		a := accounts[i]
		if a.Code == "" {
			return nil, fmt.Errorf("%w: account %q has no code", ErrUnknownAccount, a.Name)
		}
		if _, exists := t.byCode[a.Code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, a.Code)
		}
		if code, exists := t.byName[strings.ToLower(a.Name)]; exists {
			return nil, fmt.Errorf("%w: %q already used by %s", ErrDuplicateName, a.Name, code)
		}
		node := a
		node.Children = nil
		t.byCode[node.Code] = &node
		t.byName[strings.ToLower(node.Name)] = node.Code
	}
	// Second pass links children in input order.
	for i := range accounts {
		node := t.byCode[accounts[i].Code]
		if node.ParentCode == "" {
			t.roots = append(t.roots, node)
			continue
		}
		parent, ok := t.byCode[node.ParentCode]
		if !ok {
			return nil, fmt.Errorf("%w: %s (child %s)", ErrUnknownParent, node.ParentCode, node.Code)
		}
		parent.Children = append(parent.Children, node)
	}
	// Recompute types from ancestry rather than trusting the snapshot.
	for _, root := range t.roots {
		rootType, ok := typeForDigit(root.Code[0])
		if !ok {
			return nil, fmt.Errorf("%w: root %s", ErrUnclassified, root.Code)
		}
		stampType(root, rootType)
	}
	return t, nil
}

func stampType(node *Account, ft FundamentalType) {
	node.Type = ft
	for _, child := range node.Children {
		stampType(child, ft)
	}
}

// AddInput carries the caller-controlled fields of a new account.
type AddInput struct {
	ParentCode string
	Name       string
	Kind       AccountKind
	Opening    OpeningBalance
}

// Add creates an account under ParentCode. The code is assigned by
// NextChildCode; the fundamental type is inherited from the root ancestor.
// A missing parent is created first when it is one of the synthetic roots.
// Every check runs before the first write, so a failed Add leaves the tree
// untouched, including the synthetic root.
func (t *Tree) Add(in AddInput) (*Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	parent, haveParent := t.byCode[in.ParentCode]
	var rootName string
	if !haveParent {
		var synthetic bool
		rootName, synthetic = syntheticRoots[in.ParentCode]
		if !synthetic {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, in.ParentCode)
		}
	}
	if code, exists := t.byName[strings.ToLower(name)]; exists {
		return nil, fmt.Errorf("%w: %q already used by %s", ErrDuplicateName, name, code)
	}
	code, err := NextChildCode(in.ParentCode, t.Codes())
	if err != nil {
		return nil, err
	}
	if _, exists := t.byCode[code]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
	var ft FundamentalType
	if haveParent {
		ft, err = t.classifyNode(parent)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		ft, ok = typeForDigit(in.ParentCode[0])
		if !ok {
			return nil, fmt.Errorf("%w: root %s", ErrUnclassified, in.ParentCode)
		}
	}
	kind := in.Kind
	if kind == "" {
		kind = KindDetail
	}
	if !haveParent {
		parent, err = t.addRoot(in.ParentCode, rootName)
		if err != nil {
			return nil, err
		}
	}
	now := t.nowFunc()
	node := &Account{
		Code:       code,
		Name:       name,
		Kind:       kind,
		Type:       ft,
		ParentCode: parent.Code,
		Opening:    in.Opening,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	parent.Children = append(parent.Children, node)
	t.byCode[code] = node
	t.byName[strings.ToLower(node.Name)] = code
	return node, nil
}

func (t *Tree) addRoot(code, name string) (*Account, error) {
	if _, exists := t.byCode[code]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
	ft, ok := typeForDigit(code[0])
	if !ok {
		return nil, fmt.Errorf("%w: root %s", ErrUnclassified, code)
	}
	now := t.nowFunc()
	root := &Account{
		Code:      code,
		Name:      name,
		Kind:      KindGroup,
		Type:      ft,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.roots = append(t.roots, root)
	t.byCode[code] = root
	t.byName[strings.ToLower(name)] = code
	return root, nil
}

// UpdatePatch lists the fields an update may touch. Code and ParentCode are
// present only so attempts to change them can be rejected explicitly.
type UpdatePatch struct {
	Name       *string
	Kind       *AccountKind
	IsActive   *bool
	Opening    *OpeningBalance
	Code       *string
	ParentCode *string
}

// UpdateOptions carries collaborator probes for guarded field changes.
type UpdateOptions struct {
	// HasPostings reports whether ledger activity references the code.
	// Nil means "unknown", which blocks guarded changes conservatively.
	HasPostings func(code string) bool
}

// Update applies a patch to an existing account. Code and parent edits fail
// with ErrImmutableField; kind changes are refused while the account has
// children or postings. The patch is applied atomically: validation happens
// before the first field is written.
func (t *Tree) Update(code string, patch UpdatePatch, opts UpdateOptions) (*Account, error) {
	node, ok := t.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
	}
	if patch.Code != nil && *patch.Code != node.Code {
		return nil, fmt.Errorf("%w: code %s -> %s", ErrImmutableField, node.Code, *patch.Code)
	}
	if patch.ParentCode != nil && *patch.ParentCode != node.ParentCode {
		return nil, fmt.Errorf("%w: parent %s -> %s", ErrImmutableField, node.ParentCode, *patch.ParentCode)
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
		}
		if other, exists := t.byName[strings.ToLower(trimmed)]; exists && other != code {
			return nil, fmt.Errorf("%w: %q already used by %s", ErrDuplicateName, trimmed, other)
		}
	}
	if patch.Kind != nil && *patch.Kind != node.Kind {
		if len(node.Children) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrHasChildren, code)
		}
		if opts.HasPostings == nil || opts.HasPostings(code) {
			return nil, fmt.Errorf("%w: %s", ErrHasPostings, code)
		}
	}
	if patch.Name != nil {
		delete(t.byName, strings.ToLower(node.Name))
		node.Name = strings.TrimSpace(*patch.Name)
		t.byName[strings.ToLower(node.Name)] = code
	}
	if patch.Kind != nil {
		node.Kind = *patch.Kind
	}
	if patch.IsActive != nil {
		node.IsActive = *patch.IsActive
	}
	if patch.Opening != nil {
		node.Opening = *patch.Opening
	}
	node.UpdatedAt = t.nowFunc()
	return node, nil
}

// DeleteOptions controls subtree handling on delete.
type DeleteOptions struct {
	// Cascade deletes the whole subtree instead of failing on children.
	Cascade bool
	// HasPostings reports whether ledger activity references the code.
	// Nil blocks the delete conservatively.
	HasPostings func(code string) bool
}

// Delete removes an account. Without Cascade it fails on children; with it,
// the entire subtree goes. Every affected account is checked for postings
// before anything is unlinked so the tree is never left half-deleted.
func (t *Tree) Delete(code string, opts DeleteOptions) error {
	node, ok := t.byCode[code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, code)
	}
	if len(node.Children) > 0 && !opts.Cascade {
		return fmt.Errorf("%w: %s", ErrHasChildren, code)
	}
	var doomed []*Account
	collect(node, &doomed)
	for _, d := range doomed {
		if opts.HasPostings == nil || opts.HasPostings(d.Code) {
			return fmt.Errorf("%w: %s", ErrHasPostings, d.Code)
		}
	}
	if node.ParentCode == "" {
		t.roots = removeChild(t.roots, node)
	} else if parent, ok := t.byCode[node.ParentCode]; ok {
		parent.Children = removeChild(parent.Children, node)
	}
	for _, d := range doomed {
		delete(t.byCode, d.Code)
		delete(t.byName, strings.ToLower(d.Name))
	}
	return nil
}

func collect(node *Account, out *[]*Account) {
	*out = append(*out, node)
	for _, child := range node.Children {
		collect(child, out)
	}
}

func removeChild(siblings []*Account, node *Account) []*Account {
	for i, c := range siblings {
		if c == node {
			return append(siblings[:i], siblings[i+1:]...)
		}
	}
	return siblings
}

// Lookup resolves a code to its account.
func (t *Tree) Lookup(code string) (*Account, bool) {
	a, ok := t.byCode[code]
	return a, ok
}

// Len returns the number of accounts in the tree.
func (t *Tree) Len() int {
	return len(t.byCode)
}

// Codes returns the set of all account codes.
func (t *Tree) Codes() map[string]struct{} {
	codes := make(map[string]struct{}, len(t.byCode))
	for code := range t.byCode {
		codes[code] = struct{}{}
	}
	return codes
}

// Flatten returns every account in pre-order: each parent before its
// children, siblings in insertion order.
func (t *Tree) Flatten() []*Account {
	out := make([]*Account, 0, len(t.byCode))
	var walk func(*Account)
	walk = func(node *Account) {
		out = append(out, node)
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range t.roots {
		walk(root)
	}
	return out
}

// PathOf returns root-to-node account names, or nil when the code is absent.
func (t *Tree) PathOf(code string) []string {
	node, ok := t.byCode[code]
	if !ok {
		return nil
	}
	var names []string
	for node != nil {
		names = append([]string{node.Name}, names...)
		if node.ParentCode == "" {
			break
		}
		node = t.byCode[node.ParentCode]
	}
	return names
}

// Classify returns the fundamental type implied by the account's root
// ancestor. The node's own code is deliberately ignored: an account
// misnumbered outside its parent's range still classifies by ancestry.
func (t *Tree) Classify(code string) (FundamentalType, error) {
	node, ok := t.byCode[code]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAccount, code)
	}
	return t.classifyNode(node)
}

func (t *Tree) classifyNode(node *Account) (FundamentalType, error) {
	for node.ParentCode != "" {
		parent, ok := t.byCode[node.ParentCode]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownParent, node.ParentCode)
		}
		node = parent
	}
	ft, ok := typeForDigit(node.Code[0])
	if !ok {
		return "", fmt.Errorf("%w: root %s", ErrUnclassified, node.Code)
	}
	return ft, nil
}
