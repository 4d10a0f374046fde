package booking

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the custom binding validators the
// booking request uses. Safe to call more than once.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("pastdate", pastDate)
}

// pastDate accepts a 2006-01-02 date that is not in the future; dates
// of birth cannot be tomorrow.
func pastDate(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return false
	}
	return !d.After(time.Now())
}
