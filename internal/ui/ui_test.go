package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDate(t *testing.T) {
	assert.NoError(t, validateDate(""))
	assert.NoError(t, validateDate("  "))
	assert.NoError(t, validateDate("2020/02/29"))
	assert.Error(t, validateDate("2020-02-29"))
	assert.Error(t, validateDate("2021/02/29"))
	assert.Error(t, validateDate("2020/01/01 2020/12/31"))
}

func TestValidateMax(t *testing.T) {
	assert.NoError(t, validateMax("2000"))
	assert.NoError(t, validateMax(" 5 "))
	assert.Error(t, validateMax("0"))
	assert.Error(t, validateMax("-3"))
	assert.Error(t, validateMax("lots"))
	assert.Error(t, validateMax(""))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "sepsis", sanitizeInput("  sepsis\x00\x07 "))
	assert.Equal(t, "a\tb", sanitizeInput("a\tb"))
	assert.Equal(t, "", sanitizeInput("\x1b"))
}

func TestNotifyWritesLine(t *testing.T) {
	var buf bytes.Buffer
	NewFormPrompter(&buf).Notify("Restarting query.")
	assert.Contains(t, buf.String(), "Restarting query.")
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}
