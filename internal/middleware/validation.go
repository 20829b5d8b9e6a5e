package middleware

import (
	"regexp"

	"ticketing-backoffice/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// phonePattern accepts a leading + followed by 7 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func ValidateBody(dest interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.BodyParser(dest); err != nil {
			return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}

		if err := validate.Struct(dest); err != nil {
			validationErrors := err.(validator.ValidationErrors)
			firstError := validationErrors[0]

			var errorMessage string
			switch firstError.Tag() {
			case "required":
				errorMessage = firstError.Field() + " is required"
			case "email":
				errorMessage = "Invalid email format"
			case "intlphone":
				errorMessage = "Phone must be + followed by 7 to 15 digits"
			case "min":
				errorMessage = firstError.Field() + " is too short"
			case "max":
				errorMessage = firstError.Field() + " is too long"
			case "uuid":
				errorMessage = "Invalid UUID format"
			case "gt", "gte":
				errorMessage = firstError.Field() + " is out of range"
			default:
				errorMessage = "Validation failed for " + firstError.Field()
			}

			return utils.Error(c, errorMessage, fiber.StatusBadRequest)
		}

		c.Locals("validatedBody", dest)
		return c.Next()
	}
}
