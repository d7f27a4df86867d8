package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"missionreport/models"
)

func TestValidateHostOutputFormat(t *testing.T) {
	for _, ok := range []string{"{ip} ({name})", "{name}", "host {ip}", "{ip}/{ip}"} {
		assert.NoError(t, ValidateHostOutputFormat(ok), ok)
	}
	for _, bad := range []string{"", "no tokens", "{ip} {fqdn}", "{}", strings.Repeat("{ip}", 13)} {
		assert.ErrorIs(t, ValidateHostOutputFormat(bad), models.ErrValidation, bad)
	}
}
