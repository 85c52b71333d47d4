package relay

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/elbader17/sheetrelay/pkg/database"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request is the body of a relay call.
type Request struct {
	SpreadsheetID string `json:"sheetid" validate:"required"`
	Range         string `json:"range" validate:"required"`
	Query         string `json:"qry" validate:"required"`
	DBHost        string `json:"host" validate:"required"`
	DBUser        string `json:"user" validate:"required"`
	DBPassword    string `json:"password" validate:"required"`
	DBName        string `json:"database" validate:"required"`
}

// Validate reports every empty field by its JSON name.
func (r Request) Validate() error {
	return validate.Struct(r)
}

// MissingFields lists the JSON names of the fields Validate rejected.
func MissingFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// Target returns the database coordinates carried by the request.
func (r Request) Target() database.Target {
	return database.Target{
		Host:     r.DBHost,
		User:     r.DBUser,
		Password: r.DBPassword,
		Database: r.DBName,
	}
}
