package authz

// Permission describes a single capability in the static catalog. The
// catalog is defined once at startup and never mutated at runtime.
type Permission struct {
	Module      string `json:"module"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Code returns the "module.action" identifier for the permission.
func (p Permission) Code() string {
	return Code(p.Module, p.Action)
}

var catalog = []Permission{
	{Module: "dashboard", Action: "view", Description: "View company dashboard and summaries"},
	{Module: "crm", Action: "read", Description: "View customers"},
	{Module: "crm", Action: "write", Description: "Create and edit customers"},
	{Module: "crm", Action: "delete", Description: "Delete customers"},
	{Module: "projects", Action: "read", Description: "View projects and milestones"},
	{Module: "projects", Action: "write", Description: "Create and edit projects and milestones"},
	{Module: "projects", Action: "delete", Description: "Delete projects"},
	{Module: "categories", Action: "read", Description: "View project categories"},
	{Module: "categories", Action: "write", Description: "Manage project categories and recurrence rules"},
	{Module: "ledger", Action: "read", Description: "View chart of accounts and ledger reports"},
	{Module: "ledger", Action: "write", Description: "Manage chart of accounts"},
	{Module: "journal", Action: "read", Description: "View journal entries"},
	{Module: "journal", Action: "post", Description: "Post journal entries"},
	{Module: "users", Action: "read", Description: "View users"},
	{Module: "users", Action: "write", Description: "Create and edit users"},
	{Module: "users", Action: "delete", Description: "Delete users"},
	{Module: "roles", Action: "manage", Description: "Manage roles and their grants"},
	{Module: "companies", Action: "manage", Description: "Manage companies and memberships"},
	{Module: "audit", Action: "read", Description: "View audit history"},
	{Module: "suggestions", Action: "read", Description: "View suggested actions"},
}

// Catalog returns a copy of the full permission catalog, ordered by module
// then action.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// InCatalog reports whether the module/action pair is a known capability.
func InCatalog(module, action string) bool {
	for _, p := range catalog {
		if p.Module == module && p.Action == action {
			return true
		}
	}
	return false
}

// FullGrants returns a GrantMap allowing every catalog entry. Used when
// seeding the admin system role for a new company.
func FullGrants() GrantMap {
	g := GrantMap{}
	for _, p := range catalog {
		g.Grant(p.Module, p.Action)
	}
	return g
}

// GrantsFor builds a GrantMap from "module.action" codes, skipping any code
// that is not in the catalog.
func GrantsFor(codes ...string) GrantMap {
	g := GrantMap{}
	for _, code := range codes {
		module, action, ok := SplitCode(code)
		if !ok || !InCatalog(module, action) {
			continue
		}
		g.Grant(module, action)
	}
	return g
}
