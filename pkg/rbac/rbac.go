package rbac

// 权限常量
const (
	// 项目操作权限
	PermissionProjectUpdate = "project:update"
	PermissionProjectDelete = "project:delete"

	// 看板操作权限
	PermissionTaskCreate = "task:create"
	PermissionTaskUpdate = "task:update"
	PermissionTaskDelete = "task:delete"

	// 预算操作权限
	PermissionBudgetManage      = "budget:manage"
	PermissionTransactionRecord = "transaction:record"

	// 团队操作权限
	PermissionMemberManage = "member:manage"
)

// 项目角色常量
const (
	RoleOwner    = "owner"
	RoleProducer = "producer"
	RoleMember   = "member"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleOwner: {
		PermissionProjectUpdate,
		PermissionProjectDelete,
		PermissionTaskCreate,
		PermissionTaskUpdate,
		PermissionTaskDelete,
		PermissionBudgetManage,
		PermissionTransactionRecord,
		PermissionMemberManage,
	},
	// 名册管理只属于 owner
	RoleProducer: {
		PermissionProjectUpdate,
		PermissionTaskCreate,
		PermissionTaskUpdate,
		PermissionTaskDelete,
		PermissionBudgetManage,
		PermissionTransactionRecord,
	},
	RoleMember: {
		PermissionTaskCreate,
		PermissionTaskUpdate,
	},
}

// IsValidRole 检查角色是否合法
func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查项目角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查项目角色是否有指定权限（返回错误便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
