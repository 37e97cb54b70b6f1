package authz

const (
	RoleOperator = 10
	RoleAudit    = 30
	RoleAdmin    = 50
)

// Known перечисляет роли, которым разрешён доступ к реестру проверок.
var Known = []int{RoleOperator, RoleAudit, RoleAdmin}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

func Name(roleID int) string {
	switch roleID {
	case RoleOperator:
		return "operator"
	case RoleAudit:
		return "audit"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}
