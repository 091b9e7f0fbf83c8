package model

// 系统角色，可见性按 user < manager < admin 递增
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// RolePermissions 角色可见性表：每个角色能看到哪些角色的全局通知
// 高角色继承低角色的可见范围
var RolePermissions = map[string][]string{
	RoleUser:    {RoleUser},
	RoleManager: {RoleManager, RoleUser},
	RoleAdmin:   {RoleAdmin, RoleManager, RoleUser},
}

// IsValidRole 判断是否为合法角色
func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// VisibleRoles 返回该角色可见的角色集合
func VisibleRoles(role string) []string {
	roles, ok := RolePermissions[role]
	if !ok {
		return nil
	}
	return roles
}

// IsAuthorized 判断用户角色是否具备访问要求角色的权限
func IsAuthorized(requiredRole, userRole string) bool {
	for _, r := range RolePermissions[userRole] {
		if r == requiredRole {
			return true
		}
	}
	return false
}
