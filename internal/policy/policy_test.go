package policy

import (
	"testing"

	"flex-design-backend/internal/model"
)

func newTestPolicy() *AdminPolicy {
	return NewAdminPolicy("boss@flex.test", []string{"Admin@Flex.test", " helper@flex.test "})
}

func TestRoleFor(t *testing.T) {
	p := newTestPolicy()

	cases := []struct {
		name   string
		email  string
		stored model.UserRole
		want   model.UserRole
	}{
		{"allow-listed new account", "admin@flex.test", "", model.RoleAdmin},
		{"allow-listed drifted role", "HELPER@flex.test", model.RoleUser, model.RoleAdmin},
		{"super admin", "boss@flex.test", model.RoleUser, model.RoleAdmin},
		{"regular account", "client@flex.test", "", model.RoleUser},
		{"back-office admin keeps role", "staff@flex.test", model.RoleAdmin, model.RoleAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.RoleFor(tc.email, tc.stored); got != tc.want {
				t.Fatalf("RoleFor(%q, %q) = %q, want %q", tc.email, tc.stored, got, tc.want)
			}
		})
	}
}

func TestCanManage(t *testing.T) {
	p := newTestPolicy()
	admin := Identity{UserID: "a1", Email: "admin@flex.test", Role: model.RoleAdmin}

	if !p.CanManage(admin, model.UserItem{UserID: "u1", Email: "client@flex.test"}) {
		t.Fatal("admin should manage a regular account")
	}
	if p.CanManage(admin, model.UserItem{UserID: "a1", Email: "admin@flex.test"}) {
		t.Fatal("admin must not manage own account")
	}
	if p.CanManage(admin, model.UserItem{UserID: "s1", Email: "boss@flex.test"}) {
		t.Fatal("super admin account must be protected")
	}
	user := Identity{UserID: "u2", Role: model.RoleUser}
	if p.CanManage(user, model.UserItem{UserID: "u1"}) {
		t.Fatal("non-admin must not manage accounts")
	}
}
