package validator

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// New returns a validator with the custom tags used by request payloads registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func getFieldName(t reflect.Type, origFieldName string) (fieldName string) {
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if jsonName := strings.Split(tag, ",")[0]; jsonName != "" {
			return jsonName
		}
	}
	return camelToSnake(origFieldName)
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	t := structType(obj)
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(t, e.StructField())] = GetErrorMsgForField(t, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(t reflect.Type, err govalidator.FieldError) (errorMsg string) {
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg != "" {
		return
	}
	switch err.Tag() {
	case "required":
		errorMsg = "This field is required"
	case "notblank":
		errorMsg = "This field must not be blank"
	case "max":
		errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
	case "min":
		errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
	case "gte":
		errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
	case "lte":
		errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
	case "lt":
		errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
	case "gt":
		errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
	case "required_without":
		errorMsg = fmt.Sprintf("This field is required when %s is missing", camelToSnake(err.Param()))
	case "len":
		errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
	case "alphanum":
		errorMsg = "Value must be alphanumeric"
	default:
		errorMsg = "This field is invalid"
	}
	return
}
