package division

import (
	"context"
	"fmt"
	"strings"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/uow"
	"srp-backend/internal/infrastructure/logger"
	"srp-backend/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// PermissionInput names a grant to add or remove inside a division.
type PermissionInput struct {
	EntityKind authz.EntityKind     `json:"entity_kind" validate:"required,oneof=user group"`
	EntityID   uint64               `json:"entity_id" validate:"required"`
	Type       authz.PermissionType `json:"type" validate:"required,oneof=submit review pay audit admin"`
}

// DivisionGrants lists the capabilities held in one division.
type DivisionGrants struct {
	DivisionID uint64                 `json:"division_id"`
	Types      []authz.PermissionType `json:"types"`
}

// EntityDTO is a user or group holding a grant.
type EntityDTO struct {
	Kind authz.EntityKind `json:"kind"`
	ID   uint64           `json:"id"`
	Name string           `json:"name"`
}

type Usecase struct {
	repo authz.Repository
	uow  uow.UnitOfWork
	log  *zap.Logger
}

func NewUsecase(repo authz.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{repo: repo, uow: tx, log: logger.OrNop(log)}
}

func (u *Usecase) reject(op string, actor *authz.Principal, err error) error {
	if kind := apperr.Kind(err); kind != "" {
		metrics.RecordDenial(op, kind)
		u.log.Debug("division operation refused",
			zap.String("op", op),
			zap.Uint64("actor_id", actor.UserID()),
			zap.Error(err))
	}
	return err
}

// CreateDivision is restricted to system administrators.
func (u *Usecase) CreateDivision(ctx context.Context, actor *authz.Principal, name string) (*authz.Division, error) {
	if !actor.IsAdmin() {
		return nil, u.reject("create_division", actor, apperr.ErrPermission("only administrators may create divisions"))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, u.reject("create_division", actor, apperr.ErrValidation("division name must not be empty"))
	}
	d := &authz.Division{Name: name}
	if err := u.repo.CreateDivision(ctx, d); err != nil {
		u.log.Error("create division", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	u.log.Info("division created", zap.Uint64("division_id", d.ID), zap.Uint64("actor_id", actor.UserID()))
	return d, nil
}

// ListDivisions returns every division for administrators and the divisions
// the actor holds any grant in otherwise.
func (u *Usecase) ListDivisions(ctx context.Context, actor *authz.Principal) ([]authz.Division, error) {
	if actor.Anonymous() {
		return []authz.Division{}, nil
	}
	if actor.IsAdmin() {
		return u.repo.ListDivisions(ctx, nil)
	}
	ids := actor.Grants.Divisions()
	if len(ids) == 0 {
		return []authz.Division{}, nil
	}
	return u.repo.ListDivisions(ctx, ids)
}

// ListPermissions groups the actor's grants by division.
func (u *Usecase) ListPermissions(actor *authz.Principal) []DivisionGrants {
	out := []DivisionGrants{}
	if actor.Anonymous() {
		return out
	}
	for _, g := range actor.Grants.Sorted() {
		if n := len(out); n > 0 && out[n-1].DivisionID == g.DivisionID {
			out[n-1].Types = append(out[n-1].Types, g.Type)
			continue
		}
		out = append(out, DivisionGrants{DivisionID: g.DivisionID, Types: []authz.PermissionType{g.Type}})
	}
	return out
}

func (u *Usecase) canAdminister(actor *authz.Principal, divisionID uint64) bool {
	return authz.HasPermission(actor, authz.DivisionRef(divisionID), authz.PermissionAdmin)
}

func validPermission(in PermissionInput) error {
	if in.EntityKind != authz.EntityUser && in.EntityKind != authz.EntityGroup {
		return apperr.ErrValidation("unknown entity kind %q", in.EntityKind)
	}
	if !in.Type.Valid() {
		return apperr.ErrValidation("unknown permission type %q", in.Type)
	}
	return nil
}

func entityExists(ctx context.Context, repo authz.Repository, kind authz.EntityKind, id uint64) error {
	var err error
	switch kind {
	case authz.EntityUser:
		_, err = repo.GetUser(ctx, id)
	case authz.EntityGroup:
		_, err = repo.GetGroup(ctx, id)
	}
	return err
}

// AddPermission grants in.Type in divisionID to an entity. Granting an existing
// permission returns the stored row unchanged.
func (u *Usecase) AddPermission(ctx context.Context, actor *authz.Principal, divisionID uint64, in PermissionInput) (*authz.Permission, error) {
	if !u.canAdminister(actor, divisionID) {
		return nil, u.reject("add_permission", actor,
			apperr.ErrPermission("user %d may not administer division %d", actor.UserID(), divisionID))
	}
	if err := validPermission(in); err != nil {
		return nil, u.reject("add_permission", actor, err)
	}
	p := &authz.Permission{EntityKind: in.EntityKind, EntityID: in.EntityID, DivisionID: divisionID, Type: in.Type}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Authz.GetDivision(ctx, divisionID); err != nil {
			return err
		}
		if err := entityExists(ctx, r.Authz, in.EntityKind, in.EntityID); err != nil {
			return err
		}
		return r.Authz.AddPermission(ctx, p)
	})
	if err != nil {
		return nil, u.reject("add_permission", actor, err)
	}
	u.log.Info("permission added",
		zap.Uint64("division_id", divisionID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("entity_kind", string(in.EntityKind)),
		zap.Uint64("entity_id", in.EntityID),
		zap.String("type", string(in.Type)))
	return p, nil
}

// RemovePermission revokes a grant. Removing a grant that does not exist is not an error.
func (u *Usecase) RemovePermission(ctx context.Context, actor *authz.Principal, divisionID uint64, in PermissionInput) error {
	if !u.canAdminister(actor, divisionID) {
		return u.reject("remove_permission", actor,
			apperr.ErrPermission("user %d may not administer division %d", actor.UserID(), divisionID))
	}
	if err := validPermission(in); err != nil {
		return u.reject("remove_permission", actor, err)
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Authz.GetDivision(ctx, divisionID); err != nil {
			return err
		}
		return r.Authz.RemovePermission(ctx, authz.Permission{
			EntityKind: in.EntityKind, EntityID: in.EntityID, DivisionID: divisionID, Type: in.Type,
		})
	})
	if err != nil {
		return u.reject("remove_permission", actor, err)
	}
	u.log.Info("permission removed",
		zap.Uint64("division_id", divisionID),
		zap.Uint64("actor_id", actor.UserID()),
		zap.String("entity_kind", string(in.EntityKind)),
		zap.Uint64("entity_id", in.EntityID),
		zap.String("type", string(in.Type)))
	return nil
}

// ListEntities returns the users and groups holding t directly in divisionID.
// Only elevated members of the division may look.
func (u *Usecase) ListEntities(ctx context.Context, actor *authz.Principal, divisionID uint64, t authz.PermissionType) ([]EntityDTO, error) {
	if !authz.HasElevated(actor, authz.DivisionRef(divisionID)) {
		return nil, u.reject("list_entities", actor,
			apperr.ErrPermission("user %d may not inspect division %d", actor.UserID(), divisionID))
	}
	if !t.Valid() {
		return nil, u.reject("list_entities", actor, apperr.ErrValidation("unknown permission type %q", t))
	}
	perms, err := u.repo.GetPermissions(ctx, authz.PermissionQuery{
		DivisionID: &divisionID,
		Types:      []authz.PermissionType{t},
	})
	if err != nil {
		return nil, fmt.Errorf("permissions for division %d: %w", divisionID, err)
	}
	out := make([]EntityDTO, 0, len(perms))
	for _, p := range perms {
		var e authz.Entity
		switch p.EntityKind {
		case authz.EntityUser:
			e, err = u.repo.GetUser(ctx, p.EntityID)
		case authz.EntityGroup:
			e, err = u.repo.GetGroup(ctx, p.EntityID)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, EntityDTO{Kind: e.EntityKind(), ID: e.EntityID(), Name: e.EntityName()})
	}
	return out, nil
}
