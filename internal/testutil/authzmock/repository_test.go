package authzmock

import (
	"context"
	"errors"
	"testing"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	var nf *apperr.NotFoundError
	if _, err := m.GetUser(ctx, 1); !errors.As(err, &nf) {
		t.Fatalf("GetUser default: want NotFoundError, got %v", err)
	}
	if _, err := m.GetDivision(ctx, 1); !errors.As(err, &nf) {
		t.Fatalf("GetDivision default: want NotFoundError, got %v", err)
	}
	if perms, err := m.GetPermissions(ctx, authz.PermissionQuery{}); err != nil || perms != nil {
		t.Fatalf("GetPermissions default: got (%v, %v)", perms, err)
	}
	if err := m.AddPermission(ctx, &authz.Permission{}); err != nil {
		t.Fatalf("AddPermission default: want nil, got %v", err)
	}
}

func TestRepo_Forwards(t *testing.T) {
	ctx := context.Background()
	m := &Repo{
		GetGroupsForUserFn: func(_ context.Context, userID uint64) ([]authz.Group, error) {
			if userID != 4 {
				t.Fatalf("GetGroupsForUser userID mismatch: got %d", userID)
			}
			return []authz.Group{{ID: 1}}, nil
		},
		RemovePermissionFn: func(_ context.Context, p authz.Permission) error {
			if p.Type != authz.PermissionPay {
				t.Fatalf("RemovePermission type mismatch: got %s", p.Type)
			}
			return errors.New("boom")
		},
	}
	groups, err := m.GetGroupsForUser(ctx, 4)
	if err != nil || len(groups) != 1 {
		t.Fatalf("GetGroupsForUser: got (%v, %v)", groups, err)
	}
	if err := m.RemovePermission(ctx, authz.Permission{Type: authz.PermissionPay}); err == nil {
		t.Fatalf("RemovePermission: want error")
	}
}
