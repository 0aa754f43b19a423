package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/events"
	"github.com/crmkit/department-service/internal/refs"
	"github.com/crmkit/department-service/internal/repository"
	"github.com/crmkit/department-service/internal/service"
	apperrors "github.com/crmkit/department-service/pkg/util/errorutil"
)

// memStore holds documents the way the three collections do and lets tests
// inject a failure for a single named operation.
type memStore struct {
	mu        sync.Mutex
	companies map[primitive.ObjectID][]domain.Department
	users     map[primitive.ObjectID]*domain.User
	entries   map[primitive.ObjectID]*domain.Entry
	fail      map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		companies: make(map[primitive.ObjectID][]domain.Department),
		users:     make(map[primitive.ObjectID]*domain.User),
		entries:   make(map[primitive.ObjectID]*domain.Entry),
		fail:      make(map[string]error),
	}
}

func (m *memStore) failure(op string) error {
	return m.fail[op]
}

type memCompanies struct{ s *memStore }

func (r memCompanies) ListDepartments(_ context.Context, scope repository.Scope) ([]domain.Department, error) {
	if err := r.s.failure("company.list"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Department, len(r.s.companies[scope.CompanyID]))
	copy(out, r.s.companies[scope.CompanyID])
	return out, nil
}

func (r memCompanies) AppendDepartment(_ context.Context, scope repository.Scope, dept domain.Department) error {
	if err := r.s.failure("company.append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.companies[scope.CompanyID] = append(r.s.companies[scope.CompanyID], dept)
	return nil
}

func (r memCompanies) RenameDepartment(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID, name string) error {
	if err := r.s.failure("company.rename"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	departments := r.s.companies[scope.CompanyID]
	for i := range departments {
		if departments[i].ID == departmentID {
			departments[i].Name = domain.NamedDepartment(name)
		}
	}
	return nil
}

func (r memCompanies) PullDepartment(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID) error {
	if err := r.s.failure("company.pull"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	departments := r.s.companies[scope.CompanyID]
	kept := departments[:0]
	for _, dept := range departments {
		if dept.ID != departmentID {
			kept = append(kept, dept)
		}
	}
	r.s.companies[scope.CompanyID] = kept
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, assert.AnError
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, assert.AnError
}

func (r memUsers) ListByDepartment(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID) ([]domain.User, error) {
	if err := r.s.failure("user.listByDepartment"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, user := range r.s.users {
		if user.CompanyID == scope.CompanyID && user.Department != nil && user.Department.ID == departmentID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r memUsers) ListUnassigned(_ context.Context, scope repository.Scope) ([]domain.User, error) {
	if err := r.s.failure("user.listUnassigned"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, user := range r.s.users {
		if user.CompanyID == scope.CompanyID && user.Department == nil {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r memUsers) SetDepartment(_ context.Context, scope repository.Scope, userID primitive.ObjectID, ref domain.DepartmentRef) error {
	if err := r.s.failure("user.set"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[userID]; ok && user.CompanyID == scope.CompanyID {
		user.Department = &domain.DepartmentRef{ID: ref.ID, Name: ref.Name}
	}
	return nil
}

func (r memUsers) UnsetDepartment(_ context.Context, scope repository.Scope, userID primitive.ObjectID) error {
	if err := r.s.failure("user.unset"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[userID]; ok && user.CompanyID == scope.CompanyID {
		user.Department = nil
	}
	return nil
}

func (r memUsers) RenameDepartmentCopy(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID, name string) error {
	if err := r.s.failure("user.renameCopy"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.CompanyID == scope.CompanyID && user.Department != nil && user.Department.ID == departmentID {
			user.Department.Name = name
		}
	}
	return nil
}

func (r memUsers) ClearDepartment(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID) error {
	if err := r.s.failure("user.clear"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.CompanyID == scope.CompanyID && user.Department != nil && user.Department.ID == departmentID {
			user.Department = nil
		}
	}
	return nil
}

type memEntries struct{ s *memStore }

func (r memEntries) AssignDepartment(_ context.Context, scope repository.Scope, userID, departmentID primitive.ObjectID) error {
	if err := r.s.failure("entry.assign"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, entry := range r.s.entries {
		if entry.CompanyID == scope.CompanyID && entry.UserID == userID {
			id := departmentID
			entry.DepartmentID = &id
		}
	}
	return nil
}

func (r memEntries) ClearDepartment(_ context.Context, scope repository.Scope, departmentID primitive.ObjectID) error {
	if err := r.s.failure("entry.clear"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, entry := range r.s.entries {
		if entry.CompanyID == scope.CompanyID && entry.DepartmentID != nil && *entry.DepartmentID == departmentID {
			entry.DepartmentID = nil
		}
	}
	return nil
}

func (r memEntries) ClearDepartmentForUser(_ context.Context, scope repository.Scope, userID, departmentID primitive.ObjectID) error {
	if err := r.s.failure("entry.clearForUser"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, entry := range r.s.entries {
		if entry.CompanyID == scope.CompanyID && entry.UserID == userID &&
			entry.DepartmentID != nil && *entry.DepartmentID == departmentID {
			entry.DepartmentID = nil
		}
	}
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newService(store *memStore, dispatcher events.Dispatcher) *service.DepartmentService {
	return service.NewDepartmentService(service.DepartmentDependencies{
		CompanyRepo: memCompanies{s: store},
		UserRepo:    memUsers{s: store},
		EntryRepo:   memEntries{s: store},
		Dispatcher:  dispatcher,
	})
}

func seedUser(store *memStore, companyID primitive.ObjectID, dept *domain.DepartmentRef) *domain.User {
	user := &domain.User{
		ID:         refs.New(),
		CompanyID:  companyID,
		Name:       "user",
		Department: dept,
	}
	store.users[user.ID] = user
	return user
}

func seedEntry(store *memStore, companyID, userID primitive.ObjectID, deptID *primitive.ObjectID) *domain.Entry {
	entry := &domain.Entry{
		ID:           refs.New(),
		CompanyID:    companyID,
		UserID:       userID,
		DepartmentID: deptID,
	}
	store.entries[entry.ID] = entry
	return entry
}

func testActor() service.Actor {
	return service.Actor{UserID: refs.New(), Name: "operator"}
}

func TestCreate_AppendsUnnamedPlaceholder(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	before, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	require.Empty(t, before)

	created, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)
	assert.False(t, created.Name.Named, "a fresh department has no name")
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())

	after, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, created.ID, after[0].ID)
}

func TestCreate_PreservesInsertionOrder(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		dept, err := svc.Create(ctx, scope, testActor())
		require.NoError(t, err)
		ids = append(ids, dept.ID)
	}

	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for i, dept := range listed {
		assert.Equal(t, ids[i], dept.ID, "departments must keep insertion order")
	}
}

func TestCreate_PublishesAuditEvent(t *testing.T) {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	svc := newService(store, dispatcher)
	scope := repository.NewScope(refs.New())
	actor := testActor()

	created, err := svc.Create(context.Background(), scope, actor)
	require.NoError(t, err)

	published := dispatcher.byType(events.EventDepartmentCreated)
	require.Len(t, published, 1)
	assert.Equal(t, scope.CompanyID, published[0].CompanyID)
	assert.Equal(t, created.ID, published[0].DepartmentID)
	assert.Equal(t, actor.UserID, published[0].Actor.UserID)
}

func TestCreate_ConcurrentCreatesMintDistinctIDs(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())

	const n = 50
	results := make(chan primitive.ObjectID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dept, err := svc.Create(context.Background(), scope, testActor())
			assert.NoError(t, err)
			results <- dept.ID
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[primitive.ObjectID]bool)
	for id := range results {
		assert.False(t, seen[id], "department id reused")
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestRename_UpdatesCompanyAndDenormalizedCopies(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)

	assigned := seedUser(store, scope.CompanyID, &domain.DepartmentRef{ID: dept.ID, Name: "old"})
	other := seedUser(store, scope.CompanyID, nil)

	require.NoError(t, svc.Rename(ctx, scope, testActor(), dept.ID.Hex(), "Engineering"))

	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Name.Named)
	assert.Equal(t, "Engineering", listed[0].Name.Value)

	assert.Equal(t, "Engineering", store.users[assigned.ID].Department.Name)
	assert.Nil(t, store.users[other.ID].Department)
}

func TestRename_AbsentDepartmentIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())

	err := svc.Rename(context.Background(), scope, testActor(), refs.New().Hex(), "Ghost")
	assert.NoError(t, err, "renaming an id that matches nothing is a success")
}

func TestRename_DoesNotLeakAcrossTenants(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scopeA := repository.NewScope(refs.New())
	scopeB := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scopeA, testActor())
	require.NoError(t, err)

	// Same department id cached on a user of another company must stay put.
	foreign := seedUser(store, scopeB.CompanyID, &domain.DepartmentRef{ID: dept.ID, Name: "original"})

	require.NoError(t, svc.Rename(ctx, scopeA, testActor(), dept.ID.Hex(), "Engineering"))
	assert.Equal(t, "original", store.users[foreign.ID].Department.Name)
}

func TestDelete_CascadesAcrossAllThreeCollections(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)

	assigned := seedUser(store, scope.CompanyID, &domain.DepartmentRef{ID: dept.ID, Name: "Sales"})
	deptID := dept.ID
	entry := seedEntry(store, scope.CompanyID, assigned.ID, &deptID)
	unrelated := seedEntry(store, scope.CompanyID, assigned.ID, nil)

	require.NoError(t, svc.Delete(ctx, scope, testActor(), dept.ID.Hex()))

	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Nil(t, store.users[assigned.ID].Department)
	assert.Nil(t, store.entries[entry.ID].DepartmentID)
	assert.Nil(t, store.entries[unrelated.ID].DepartmentID)
}

func TestDelete_RepeatIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, scope, testActor(), dept.ID.Hex()))
	require.NoError(t, svc.Delete(ctx, scope, testActor(), dept.ID.Hex()))

	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDelete_SingleOperationFailureSurfaces(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)

	store.fail["entry.clear"] = assert.AnError

	err = svc.Delete(ctx, scope, testActor(), dept.ID.Hex())
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)

	// A retry after the fault clears recovers full consistency.
	delete(store.fail, "entry.clear")
	require.NoError(t, svc.Delete(ctx, scope, testActor(), dept.ID.Hex()))
	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAssignUser_SetsCopyAndEntryReferences(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)
	user := seedUser(store, scope.CompanyID, nil)
	entry := seedEntry(store, scope.CompanyID, user.ID, nil)

	require.NoError(t, svc.AssignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex(), "Engineering"))

	require.NotNil(t, store.users[user.ID].Department)
	assert.Equal(t, dept.ID, store.users[user.ID].Department.ID)
	assert.Equal(t, "Engineering", store.users[user.ID].Department.Name)
	require.NotNil(t, store.entries[entry.ID].DepartmentID)
	assert.Equal(t, dept.ID, *store.entries[entry.ID].DepartmentID)

	inDept, err := svc.ListDepartmentUsers(ctx, scope, dept.ID.Hex())
	require.NoError(t, err)
	require.Len(t, inDept, 1)
	assert.Equal(t, user.ID, inDept[0].ID)

	free, err := svc.ListFreeUsers(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestAssignUser_TrustsCallerSuppliedName(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)
	require.NoError(t, svc.Rename(ctx, scope, testActor(), dept.ID.Hex(), "Engineering"))
	user := seedUser(store, scope.CompanyID, nil)

	// The copy takes whatever the caller sends, even when it disagrees with
	// the canonical name.
	require.NoError(t, svc.AssignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex(), "Marketing"))
	assert.Equal(t, "Marketing", store.users[user.ID].Department.Name)
}

func TestUnassignUser_ClearsCopyAndScopedEntries(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)
	user := seedUser(store, scope.CompanyID, nil)
	entry := seedEntry(store, scope.CompanyID, user.ID, nil)
	require.NoError(t, svc.AssignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex(), "Engineering"))

	require.NoError(t, svc.UnassignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex()))

	assert.Nil(t, store.users[user.ID].Department)
	assert.Nil(t, store.entries[entry.ID].DepartmentID)

	free, err := svc.ListFreeUsers(ctx, scope)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, user.ID, free[0].ID)

	inDept, err := svc.ListDepartmentUsers(ctx, scope, dept.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, inDept)
}

func TestMutations_AreIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()

	dept, err := svc.Create(ctx, scope, testActor())
	require.NoError(t, err)
	user := seedUser(store, scope.CompanyID, nil)
	seedEntry(store, scope.CompanyID, user.ID, nil)

	repeat := func(op func() error) {
		require.NoError(t, op())
		require.NoError(t, op())
	}

	repeat(func() error {
		return svc.Rename(ctx, scope, testActor(), dept.ID.Hex(), "Engineering")
	})
	listed, err := svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Engineering", listed[0].Name.Value)

	repeat(func() error {
		return svc.AssignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex(), "Engineering")
	})
	assert.Equal(t, dept.ID, store.users[user.ID].Department.ID)

	repeat(func() error {
		return svc.UnassignUser(ctx, scope, testActor(), dept.ID.Hex(), user.ID.Hex())
	})
	assert.Nil(t, store.users[user.ID].Department)

	repeat(func() error {
		return svc.Delete(ctx, scope, testActor(), dept.ID.Hex())
	})
	listed, err = svc.FetchDepartments(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestOperations_RejectMalformedReferences(t *testing.T) {
	store := newMemStore()
	svc := newService(store, nil)
	scope := repository.NewScope(refs.New())
	ctx := context.Background()
	actor := testActor()

	checks := []error{
		svc.Rename(ctx, scope, actor, "bogus", "x"),
		svc.Delete(ctx, scope, actor, "bogus"),
		svc.AssignUser(ctx, scope, actor, "bogus", refs.New().Hex(), "x"),
		svc.AssignUser(ctx, scope, actor, refs.New().Hex(), "bogus", "x"),
		svc.UnassignUser(ctx, scope, actor, "bogus", refs.New().Hex()),
	}
	for i, err := range checks {
		require.Error(t, err, "case %d", i)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr, "case %d", i)
		assert.Equal(t, "INVALID_REFERENCE", domainErr.Code, "case %d", i)
	}

	_, err := svc.ListDepartmentUsers(ctx, scope, "bogus")
	require.Error(t, err)
}
