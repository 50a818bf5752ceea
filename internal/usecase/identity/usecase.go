package identity

import (
	"context"
	"fmt"
	"strings"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/uow"
	"srp-backend/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// Usecase resolves acting users and manages users and groups.
type Usecase struct {
	repo authz.Repository
	uow  uow.UnitOfWork
	log  *zap.Logger
}

func NewUsecase(repo authz.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{repo: repo, uow: tx, log: logger.OrNop(log)}
}

// Resolve loads userID with its groups and grants. User id 0 is the anonymous actor (nil).
func (u *Usecase) Resolve(ctx context.Context, userID uint64) (*authz.Principal, error) {
	if userID == 0 {
		return nil, nil
	}
	user, err := u.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := authz.ResolvePrincipal(ctx, u.repo, user)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	return p, nil
}

func (u *Usecase) CreateUser(ctx context.Context, name string, admin bool) (*authz.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrValidation("user name must not be empty")
	}
	user := &authz.User{Name: name, Admin: admin}
	if err := u.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	u.log.Info("user created", zap.Uint64("user_id", user.ID), zap.Bool("admin", admin))
	return user, nil
}

func (u *Usecase) CreateGroup(ctx context.Context, name string) (*authz.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrValidation("group name must not be empty")
	}
	g := &authz.Group{Name: name}
	if err := u.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	u.log.Info("group created", zap.Uint64("group_id", g.ID))
	return g, nil
}

// AddMember puts userID into groupID. Both must exist.
func (u *Usecase) AddMember(ctx context.Context, groupID, userID uint64) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Authz.GetGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := r.Authz.GetUser(ctx, userID); err != nil {
			return err
		}
		if err := r.Authz.AddMember(ctx, groupID, userID); err != nil {
			return err
		}
		u.log.Info("group member added", zap.Uint64("group_id", groupID), zap.Uint64("user_id", userID))
		return nil
	})
}
