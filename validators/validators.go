package validators

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type ValidationResponse struct {
	Errors []ValidationError `json:"errors"`
}

func Validate(data interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(data)
	if err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Param(),
				})
			}
		}
	}

	return validationErrors
}

// bindAndValidate binds the JSON body into req and runs struct validation,
// answering 400 itself when either step fails.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return false
	}

	if errs := Validate(req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ValidationResponse{
			Errors: errs,
		})
		return false
	}

	return true
}
