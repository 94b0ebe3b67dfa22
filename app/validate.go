package app

import (
	"encoding/json"
	"strings"
)

// xmlPrefixes are the accepted starts of a weather XML document
var xmlPrefixes = []string{"<?xml ", "<weatherdata>", "<current>"}

// IsXMLStringValid reports whether s starts with an XML declaration or one of
// the known weather root elements. Leading whitespace is not skipped.
func IsXMLStringValid(s string) bool {
	for _, prefix := range xmlPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// IsJSONString reports whether s parses as JSON
func IsJSONString(s string) bool {
	return json.Valid([]byte(s))
}
