package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/events"
	"github.com/crmkit/department-service/internal/refs"
	"github.com/crmkit/department-service/internal/repository"
	apperrors "github.com/crmkit/department-service/pkg/util/errorutil"
)

// Actor identifies the authenticated caller for audit purposes.
type Actor struct {
	UserID primitive.ObjectID
	Name   string
}

// DepartmentService coordinates department lifecycle cascades. Each intent
// expands into a set of per-collection updates that run concurrently and join
// before the intent returns. The first failure surfaces as the intent's
// failure; siblings that already completed are not rolled back, so a partially
// applied cascade is a possible terminal state. Every operation is idempotent
// and callers recover by re-issuing the same request.
type DepartmentService struct {
	companies  repository.CompanyRepository
	users      repository.UserRepository
	entries    repository.EntryRepository
	dispatcher events.Dispatcher
}

// DepartmentDependencies bundles repositories.
type DepartmentDependencies struct {
	CompanyRepo repository.CompanyRepository
	UserRepo    repository.UserRepository
	EntryRepo   repository.EntryRepository
	Dispatcher  events.Dispatcher
}

// NewDepartmentService creates the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		companies:  deps.CompanyRepo,
		users:      deps.UserRepo,
		entries:    deps.EntryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// FetchDepartments returns the company's embedded department list in insertion
// order, empty if the company holds none.
func (s *DepartmentService) FetchDepartments(ctx context.Context, scope repository.Scope) ([]domain.Department, error) {
	departments, err := s.companies.ListDepartments(ctx, scope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return departments, nil
}

// Create appends an unnamed department placeholder to the company list. The
// name stays false until the first rename. An audit event is published
// fire-and-forget; it is not part of the result contract.
func (s *DepartmentService) Create(ctx context.Context, scope repository.Scope, actor Actor) (*domain.Department, error) {
	dept := domain.Department{
		ID:        refs.New(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.companies.AppendDepartment(ctx, scope, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventDepartmentCreated, scope, dept.ID, actor,
		events.DepartmentCreatedPayload{CreatedAt: dept.CreatedAt})
	return &dept, nil
}

// Rename sets the department's name on the company record and on the
// denormalized copy of every user assigned to it. An absent department id is a
// successful no-op: both updates simply match zero documents.
func (s *DepartmentService) Rename(ctx context.Context, scope repository.Scope, actor Actor, departmentID, name string) error {
	deptID, err := refs.Parse(departmentID)
	if err != nil {
		return apperrors.MapError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.companies.RenameDepartment(gctx, scope, deptID, name)
	})
	g.Go(func() error {
		return s.users.RenameDepartmentCopy(gctx, scope, deptID, name)
	})
	if err := g.Wait(); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventDepartmentRenamed, scope, deptID, actor,
		events.DepartmentRenamedPayload{Name: name})
	return nil
}

// Delete removes the department from the company list, clears the denormalized
// copy on every assigned user and drops the reference id from every entry. The
// three updates run concurrently; success means all three completed, whether
// or not any matched documents. Re-deleting an id is a no-op.
func (s *DepartmentService) Delete(ctx context.Context, scope repository.Scope, actor Actor, departmentID string) error {
	deptID, err := refs.Parse(departmentID)
	if err != nil {
		return apperrors.MapError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.companies.PullDepartment(gctx, scope, deptID)
	})
	g.Go(func() error {
		return s.users.ClearDepartment(gctx, scope, deptID)
	})
	g.Go(func() error {
		return s.entries.ClearDepartment(gctx, scope, deptID)
	})
	if err := g.Wait(); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventDepartmentDeleted, scope, deptID, actor, nil)
	return nil
}

// AssignUser sets the user's denormalized department copy and stamps the
// department id on every entry by that user. The copy's name is the one the
// caller supplied; it is not re-read from the company record.
func (s *DepartmentService) AssignUser(ctx context.Context, scope repository.Scope, actor Actor, departmentID, userID, name string) error {
	deptID, err := refs.Parse(departmentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	uID, err := refs.Parse(userID)
	if err != nil {
		return apperrors.MapError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.users.SetDepartment(gctx, scope, uID, domain.DepartmentRef{ID: deptID, Name: name})
	})
	g.Go(func() error {
		return s.entries.AssignDepartment(gctx, scope, uID, deptID)
	})
	if err := g.Wait(); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserAssigned, scope, deptID, actor,
		events.UserAssignedPayload{UserID: uID, Name: name})
	return nil
}

// UnassignUser clears the user's denormalized copy and drops the reference id
// from entries matching company, user and department.
func (s *DepartmentService) UnassignUser(ctx context.Context, scope repository.Scope, actor Actor, departmentID, userID string) error {
	deptID, err := refs.Parse(departmentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	uID, err := refs.Parse(userID)
	if err != nil {
		return apperrors.MapError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.users.UnsetDepartment(gctx, scope, uID)
	})
	g.Go(func() error {
		return s.entries.ClearDepartmentForUser(gctx, scope, uID, deptID)
	})
	if err := g.Wait(); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserUnassigned, scope, deptID, actor,
		events.UserUnassignedPayload{UserID: uID})
	return nil
}

// ListDepartmentUsers returns the users whose denormalized copy points at the
// department.
func (s *DepartmentService) ListDepartmentUsers(ctx context.Context, scope repository.Scope, departmentID string) ([]domain.User, error) {
	deptID, err := refs.Parse(departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	users, err := s.users.ListByDepartment(ctx, scope, deptID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListFreeUsers returns the company's users with no department assigned.
func (s *DepartmentService) ListFreeUsers(ctx context.Context, scope repository.Scope) ([]domain.User, error) {
	users, err := s.users.ListUnassigned(ctx, scope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func (s *DepartmentService) publish(ctx context.Context, eventType events.EventType, scope repository.Scope, departmentID primitive.ObjectID, actor Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		CompanyID:    scope.CompanyID,
		DepartmentID: departmentID,
		Actor:        events.Actor{UserID: actor.UserID, Name: actor.Name},
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
