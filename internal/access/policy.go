package access

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy maps roles to the permissions they grant.
type Policy struct {
	roles map[string][]Permission
}

// DefaultPolicy grants admins everything in the reporting pipeline and
// restricts agents to their own leads.
func DefaultPolicy() *Policy {
	return &Policy{roles: map[string][]Permission{
		RoleAdmin: {
			Perm(ResourceLeads, ActionRead),
			Perm(ResourceLeads, ActionViewAll),
			Perm(ResourceAnalytics, ActionView),
			Perm(ResourceAnalytics, ActionExport),
			Perm(ResourceReports, ActionExport),
			Perm(ResourceNotifications, ActionRead),
		},
		RoleAgent: {
			Perm(ResourceLeads, ActionRead),
			Perm(ResourceAnalytics, ActionView),
			Perm(ResourceReports, ActionExport),
			Perm(ResourceNotifications, ActionRead),
		},
	}}
}

type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPolicy starts from DefaultPolicy and replaces the grants of every role
// listed in the YAML file at path. An empty path returns the defaults.
//
//	roles:
//	  agent: ["leads:read", "analytics:view"]
//	  manager: ["leads:*", "analytics:*", "reports:export"]
func LoadPolicy(path string) (*Policy, error) {
	pol := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return pol, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access policy: %w", err)
	}
	return pol.merge(raw)
}

// ParsePolicy applies YAML overrides on top of DefaultPolicy.
func ParsePolicy(raw []byte) (*Policy, error) {
	return DefaultPolicy().merge(raw)
}

func (pol *Policy) merge(raw []byte) (*Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse access policy: %w", err)
	}
	for role, perms := range file.Roles {
		grants := make([]Permission, 0, len(perms))
		for _, perm := range perms {
			perm = strings.TrimSpace(perm)
			if perm != "*" && !strings.Contains(perm, ":") {
				return nil, fmt.Errorf("access policy role %q: malformed permission %q", role, perm)
			}
			grants = append(grants, Permission(perm))
		}
		pol.roles[role] = grants
	}
	return pol, nil
}

// Roles lists the configured role names, sorted.
func (pol *Policy) Roles() []string {
	out := make([]string, 0, len(pol.roles))
	for role := range pol.roles {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}
