package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const reasonInvalidBody = "invalid request body"

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("vaultrole", validateRole)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

// bindJSON decodes the request body into dst and validates it. The first
// failing field is looked up in reasons by "field" or "field.tag"; unknown
// failures get a generic reason. The returned error wraps
// common.ErrInvalidInput.
func bindJSON(c *gin.Context, dst any, reasons map[string]string) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if r, ok := reasons[fe.Field()+"."+fe.Tag()]; ok {
			return common.WithReason(common.ErrInvalidInput, r)
		}
		if r, ok := reasons[fe.Field()]; ok {
			return common.WithReason(common.ErrInvalidInput, r)
		}
	}
	return common.WithReason(common.ErrInvalidInput, reasonInvalidBody)
}
