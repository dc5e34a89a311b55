package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/codr1/Courtside/internal/models"
)

func TestRequireClubRoleUnauthenticated(t *testing.T) {
	err := RequireClubRole(context.Background(), models.RoleClubAdmin, models.RoleMember)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireClubRoleForbidden(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 10})

	err := RequireClubRole(ctx, models.RoleMember, models.RoleClubAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireClubRoleAllowed(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 10})

	if err := RequireClubRole(ctx, models.RoleCoach, models.RoleMember); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := RequireClubRole(ctx, models.RoleSuperAdmin, models.RoleClubAdmin); err != nil {
		t.Fatalf("expected super admin to pass, got %v", err)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	if err := RequireSuperAdmin(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 1})
	if err := RequireSuperAdmin(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	ctx = ContextWithUser(context.Background(), &AuthUser{ID: 1, IsSuperAdmin: true})
	if err := RequireSuperAdmin(ctx); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *AuthUser
		membership *Membership
		want       models.Role
	}{
		{"no membership", &AuthUser{ID: 1}, nil, models.RoleVisitor},
		{"member", &AuthUser{ID: 1}, &Membership{Role: models.RoleMember, Status: models.MembershipActive}, models.RoleMember},
		{
			"pending keeps current role",
			&AuthUser{ID: 1},
			&Membership{Role: models.RoleVisitor, Status: models.MembershipPending, RequestedRole: models.RoleCoach},
			models.RoleVisitor,
		},
		{"super admin wins", &AuthUser{ID: 1, IsSuperAdmin: true}, &Membership{Role: models.RoleMember}, models.RoleSuperAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveRole(tt.user, tt.membership); got != tt.want {
				t.Fatalf("EffectiveRole = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCanManageBooking(t *testing.T) {
	owner := &AuthUser{ID: 7}
	other := &AuthUser{ID: 8}

	if !CanManageBooking(owner, models.RoleVisitor, 7) {
		t.Fatalf("expected owner to manage booking")
	}
	if CanManageBooking(other, models.RoleCoach, 7) {
		t.Fatalf("expected non-owner coach to be denied")
	}
	if !CanManageBooking(other, models.RoleClubAdmin, 7) {
		t.Fatalf("expected club admin to manage booking")
	}
	if CanManageBooking(nil, models.RoleClubAdmin, 7) {
		t.Fatalf("expected nil user to be denied")
	}
}

func TestClubFromContext(t *testing.T) {
	if ClubFromContext(context.Background()) != nil {
		t.Fatalf("expected nil club")
	}
	if ClubIDString(context.Background()) != "" {
		t.Fatalf("expected empty club id")
	}

	ctx := ContextWithClub(context.Background(), &Club{ID: 42, Slug: "riverside"})
	if got := ClubIDString(ctx); got != "42" {
		t.Fatalf("ClubIDString = %q, want 42", got)
	}
}
