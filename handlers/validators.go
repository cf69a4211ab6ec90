package handlers

import (
	"sync"

	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the portal's custom binding rules to gin's validator.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("phone", validPhone)
		}
	})
}

func validPhone(fl validator.FieldLevel) bool {
	return textutil.NormalizePhone(fl.Field().String()) != ""
}
