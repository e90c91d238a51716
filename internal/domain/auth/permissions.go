package auth

import "context"

const (
	RoleEmployee    = "employee"
	RoleManager     = "manager"
	RoleHR          = "hr"
	RoleSystemAdmin = "system_admin"
)

const (
	PermEvaluationRead   = "evaluation.read"
	PermEvaluationSubmit = "evaluation.submit"
	PermEvaluationDelete = "evaluation.delete"
	PermCatalogRead      = "evaluation.catalog.read"
	PermCatalogWrite     = "evaluation.catalog.write"
	PermReportsRead      = "evaluation.reports.read"
)

var DefaultPermissions = []string{
	PermEvaluationRead,
	PermEvaluationSubmit,
	PermEvaluationDelete,
	PermCatalogRead,
	PermCatalogWrite,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEvaluationRead,
		PermReportsRead,
	},
	RoleManager: {
		PermEvaluationRead,
		PermEvaluationSubmit,
		PermCatalogRead,
		PermReportsRead,
	},
	RoleHR: {
		PermEvaluationRead,
		PermEvaluationSubmit,
		PermEvaluationDelete,
		PermCatalogRead,
		PermCatalogWrite,
		PermReportsRead,
	},
	RoleSystemAdmin: DefaultPermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
