package city

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// City is a tracked city. Identity is determined by ID.
type City struct {
	ID   string `json:"id" validate:"required,max=200"`
	Name string `json:"name" validate:"required,max=100"`
}

// Validate reports whether c is a well-formed record.
func (c City) Validate() error {
	return validate.Struct(c)
}

// NewID derives a city id from the provider's canonical name and numeric id:
// the lower-cased name with whitespace runs replaced by "-", then "-<id>".
func NewID(name string, numericID int64) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return slug + "-" + strconv.FormatInt(numericID, 10)
}
