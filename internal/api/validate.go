package api

import (
	"github.com/go-playground/validator/v10"

	"spin-rewards/internal/sui"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sui_address", func(fl validator.FieldLevel) bool {
		return sui.IsValidAddress(fl.Field().String())
	})
	_ = v.RegisterValidation("sui_digest", func(fl validator.FieldLevel) bool {
		return sui.ValidateDigest(fl.Field().String()) == nil
	})
	return v
}
