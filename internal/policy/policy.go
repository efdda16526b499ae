// Package policy decides administrator privileges. Every entry point that
// grants or checks the admin role goes through AdminPolicy.
package policy

import (
	"strings"

	"flex-design-backend/internal/model"
)

// Identity is the authenticated caller as carried by an access token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   model.UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

type AdminPolicy struct {
	superAdmin string
	allowList  map[string]struct{}
}

func NewAdminPolicy(superAdmin string, emails []string) *AdminPolicy {
	p := &AdminPolicy{
		superAdmin: normalize(superAdmin),
		allowList:  make(map[string]struct{}, len(emails)+1),
	}
	for _, e := range emails {
		if n := normalize(e); n != "" {
			p.allowList[n] = struct{}{}
		}
	}
	if p.superAdmin != "" {
		p.allowList[p.superAdmin] = struct{}{}
	}
	return p
}

func (p *AdminPolicy) IsAllowListed(email string) bool {
	_, ok := p.allowList[normalize(email)]
	return ok
}

func (p *AdminPolicy) IsSuperAdmin(email string) bool {
	return p.superAdmin != "" && normalize(email) == p.superAdmin
}

// RoleFor returns the role an account should hold. Allow-listed addresses are
// always ADMIN; any other account keeps its stored role, so admins created
// from the back-office are never demoted. An empty stored role means USER.
func (p *AdminPolicy) RoleFor(email string, stored model.UserRole) model.UserRole {
	if p.IsAllowListed(email) {
		return model.RoleAdmin
	}
	if stored == "" {
		return model.RoleUser
	}
	return stored
}

// CanManage reports whether actor may ban or delete the target account.
func (p *AdminPolicy) CanManage(actor Identity, target model.UserItem) bool {
	if !actor.IsAdmin() {
		return false
	}
	if actor.UserID == target.UserID {
		return false
	}
	return !p.IsSuperAdmin(target.Email)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
