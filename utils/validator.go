package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the struct validation tags and returns field-keyed
// message lists matching the API's error body format, or nil.
func ValidateStruct(s interface{}) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := map[string][]string{}
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		if tag, ok := jsonField(s, err.StructField()); ok {
			field = tag
		} else {
			field = strings.ToLower(field)
		}

		var msg string
		switch err.Tag() {
		case "required":
			msg = "This field is required."
		case "min":
			msg = "Ensure this field has at least " + err.Param() + " characters."
		case "max":
			msg = "Ensure this field has no more than " + err.Param() + " characters."
		case "email":
			msg = "Enter a valid email address."
		default:
			msg = "This field is invalid."
		}
		fields[field] = append(fields[field], msg)
	}
	return fields
}

func jsonField(s interface{}, structField string) (string, bool) {
	t := structType(s)
	if t == nil {
		return "", false
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return "", false
	}
	tag := strings.Split(f.Tag.Get("json"), ",")[0]
	if tag == "" || tag == "-" {
		return "", false
	}
	return tag, true
}

func structType(s interface{}) reflect.Type {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}
