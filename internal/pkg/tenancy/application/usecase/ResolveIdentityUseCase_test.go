package usecase

import (
	"context"
	"errors"
	"testing"

	"commscore/internal/pkg/apperror"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	"commscore/internal/pkg/tenancy/persistence/repository/adapter"
)

type fakeMembers struct {
	roles map[string]tenancy.Role // workspace|user -> role
}

func (f fakeMembers) FindRole(ctx context.Context, workspaceID, userID string) (tenancy.Role, bool, error) {
	role, ok := f.roles[workspaceID+"|"+userID]
	return role, ok, nil
}

func newIdentityFixture() *ResolveIdentityUseCase {
	return NewResolveIdentityUseCase(
		adapter.PassthroughSessionResolver{},
		fakeMembers{roles: map[string]tenancy.Role{
			"w1|u1": tenancy.RoleMember,
			"w1|u2": tenancy.RoleAdmin,
		}},
	)
}

func TestResolveIdentityHappyPath(t *testing.T) {
	uc := newIdentityFixture()
	id, err := uc.Execute(context.Background(), ResolveIdentityInput{Credential: "u2", WorkspaceID: "w1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if id.UserID != "u2" || id.WorkspaceID != "w1" || id.Role != tenancy.RoleAdmin {
		t.Fatalf("identity = %+v", id)
	}
}

func TestResolveIdentityOrderedFailures(t *testing.T) {
	uc := newIdentityFixture()
	cases := []struct {
		name string
		in   ResolveIdentityInput
		want error
	}{
		{"anonymous", ResolveIdentityInput{}, apperror.ErrUnauthorized},
		{"no workspace", ResolveIdentityInput{Credential: "u1"}, apperror.ErrNoWorkspace},
		{"not a member", ResolveIdentityInput{Credential: "u9", WorkspaceID: "w1"}, apperror.ErrForbidden},
		{"wrong workspace", ResolveIdentityInput{Credential: "u1", WorkspaceID: "w2"}, apperror.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Execute(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
