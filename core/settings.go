package core

import (
	"fmt"
	"regexp"

	"missionreport/models"
)

const maxHostOutputFormat = 50

var formatToken = regexp.MustCompile(`\{[^{}]*\}`)

// ValidateHostOutputFormat accepts a host display format that uses only the {ip}
// and {name} tokens, and at least one of them.
func ValidateHostOutputFormat(format string) error {
	if len(format) > maxHostOutputFormat {
		return fmt.Errorf("host output format is longer than %d characters: %w", maxHostOutputFormat, models.ErrValidation)
	}
	found := false
	for _, tok := range formatToken.FindAllString(format, -1) {
		if tok != "{ip}" && tok != "{name}" {
			return fmt.Errorf("host output format token %s is not one of {ip} or {name}: %w", tok, models.ErrValidation)
		}
		found = true
	}
	if !found {
		return fmt.Errorf("host output format must use {ip} or {name}: %w", models.ErrValidation)
	}
	return nil
}
