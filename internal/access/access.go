// Package access decides what a caller may see and do. Callers pass an
// explicit Principal; nothing here reads ambient session state.
package access

import (
	"strings"

	"estate_portal_backend/platform/httpkit"
)

// Resource is a protected area of the application.
type Resource string

// Action is an operation on a resource.
type Action string

const (
	ResourceLeads         Resource = "leads"
	ResourceAnalytics     Resource = "analytics"
	ResourceReports       Resource = "reports"
	ResourceNotifications Resource = "notifications"

	ActionRead    Action = "read"
	ActionViewAll Action = "view_all"
	ActionView    Action = "view"
	ActionExport  Action = "export"
)

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// Permission is a "resource:action" grant. "resource:*" and "*" are wildcards.
type Permission string

// Perm builds the permission for resource and action.
func Perm(r Resource, a Action) Permission {
	return Permission(string(r) + ":" + string(a))
}

func (p Permission) covers(r Resource, a Action) bool {
	s := string(p)
	if s == "*" {
		return true
	}
	res, act, ok := strings.Cut(s, ":")
	if !ok || res != string(r) {
		return false
	}
	return act == "*" || act == string(a)
}

// Principal is the caller on whose behalf an operation runs.
type Principal struct {
	UserID      string
	Roles       []string
	Permissions []Permission
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// FromIdentity converts the authenticated HTTP identity into a principal.
func FromIdentity(id httpkit.Identity) Principal {
	p := Principal{UserID: id.UserID(), Roles: append([]string(nil), id.Roles()...)}
	for _, perm := range id.Permissions() {
		p.Permissions = append(p.Permissions, Permission(perm))
	}
	return p
}

// Can reports whether p may perform action on resource under policy.
func (pol *Policy) Can(p Principal, r Resource, a Action) bool {
	for _, perm := range p.Permissions {
		if perm.covers(r, a) {
			return true
		}
	}
	for _, role := range p.Roles {
		for _, perm := range pol.roles[role] {
			if perm.covers(r, a) {
				return true
			}
		}
	}
	return false
}

// SeesAllLeads reports whether p is exempt from the own-leads restriction.
func (pol *Policy) SeesAllLeads(p Principal) bool {
	return pol.Can(p, ResourceLeads, ActionViewAll)
}

// CanExport reports whether p may download reports. Either the analytics or
// the reports export grant is enough.
func (pol *Policy) CanExport(p Principal) bool {
	return pol.Can(p, ResourceAnalytics, ActionExport) || pol.Can(p, ResourceReports, ActionExport)
}
