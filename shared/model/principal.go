package model

import (
	"context"

	"rally/shared/constant"
)

// Principal is the authenticated actor performing an operation. Services
// receive it explicitly instead of reading identity from ambient state.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == constant.RoleAdmin
}

// PrincipalFromContext rebuilds the principal from the claims the auth
// middleware stored on the request context.
func PrincipalFromContext(ctx context.Context) Principal {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	name, _ := ctx.Value(constant.ContextKeyUserName).(string)
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Principal{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  role,
	}
}
