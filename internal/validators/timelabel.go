package validators

import (
	"errors"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	timeLabelRe = regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9] (AM|PM)$`)
	slugRe      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// IsTimeLabel accepts slot labels such as "9:30 AM".
func IsTimeLabel(s string) bool {
	return timeLabelRe.MatchString(s)
}

// IsClock accepts 24h "15:04" values.
func IsClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsSlug accepts lowercase words joined by single hyphens.
func IsSlug(s string) bool {
	return len(s) >= 3 && len(s) <= 60 && slugRe.MatchString(s)
}

// Register adds the custom tags to gin's validator:
// "timelabel" for slot labels, "clock" for HH:MM working hours and "slug"
// for public profile paths.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validators: gin binding engine is not validator/v10")
	}
	if err := v.RegisterValidation("timelabel", func(fl validator.FieldLevel) bool {
		return IsTimeLabel(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
}
