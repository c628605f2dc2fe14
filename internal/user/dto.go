package user

import (
	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(254)
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("role", d.Role).Required().Custom(validRole)
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	return v.Validate()
}

type UpdateUserDTO struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
	Password *string `json:"password,omitempty"`
}

func (d *UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("role", d.Role).Required().Custom(validRole)
	if d.Password != nil {
		v.Field("password", *d.Password).MinLength(8).MaxLength(72)
	}
	return v.Validate()
}

func validRole(value interface{}) *internal.AppError {
	role, ok := value.(string)
	if !ok || role == "" {
		return nil
	}
	if _, ok := auth.ParseRole(role); !ok {
		return internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeValidationFailed)
	}
	return nil
}
