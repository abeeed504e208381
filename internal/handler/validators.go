package handler

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// indianStates covers the states and union territories accepted on buyer
// identity fields. Matching is case-insensitive.
var indianStates = map[string]bool{
	"andhra pradesh":    true,
	"arunachal pradesh": true,
	"assam":             true,
	"bihar":             true,
	"chhattisgarh":      true,
	"goa":               true,
	"gujarat":           true,
	"haryana":           true,
	"himachal pradesh":  true,
	"jharkhand":         true,
	"karnataka":         true,
	"kerala":            true,
	"madhya pradesh":    true,
	"maharashtra":       true,
	"manipur":           true,
	"meghalaya":         true,
	"mizoram":           true,
	"nagaland":          true,
	"odisha":            true,
	"punjab":            true,
	"rajasthan":         true,
	"sikkim":            true,
	"tamil nadu":        true,
	"telangana":         true,
	"tripura":           true,
	"uttar pradesh":     true,
	"uttarakhand":       true,
	"west bengal":       true,

	"andaman and nicobar islands":              true,
	"chandigarh":                               true,
	"dadra and nagar haveli and daman and diu": true,
	"delhi":             true,
	"jammu and kashmir": true,
	"ladakh":            true,
	"lakshadweep":       true,
	"puducherry":        true,
}

func validIndianState(fl validator.FieldLevel) bool {
	return indianStates[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
}

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once before routes are registered.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("indianstate", validIndianState)
}
