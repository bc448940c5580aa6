package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyTenantID  CtxKey = "TenantID"
	KeyPrincipal CtxKey = "Principal"
)
