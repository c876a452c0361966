package handler

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrorsTranslatesValidator(t *testing.T) {
	err := binding.Validator.ValidateStruct(&signupForm{Username: "", Password1: "short", Password2: "other"})
	require.Error(t, err)

	errs := fieldErrors(err)
	assert.Equal(t, "This field is required.", errs["username"])
	assert.Equal(t, "Ensure this value has at least 8 characters.", errs["password1"])
	assert.Equal(t, "The two password fields didn't match.", errs["password2"])
}

func TestFieldErrorsNonValidation(t *testing.T) {
	assert.Empty(t, fieldErrors(nil))
	assert.Contains(t, fieldErrors(errors.New("boom")), "form")
}

func TestParseGroup(t *testing.T) {
	id, ok := parseGroup("")
	assert.True(t, ok)
	assert.Nil(t, id)

	id, ok = parseGroup(" 7 ")
	require.True(t, ok)
	assert.Equal(t, uint(7), *id)

	for _, raw := range []string{"x", "0", "-1"} {
		_, ok = parseGroup(raw)
		assert.False(t, ok, raw)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"/follow/":          "/follow/",
		"/posts/1/edit/":    "/posts/1/edit/",
		"":                  "",
		"http://evil.test/": "",
		"//evil.test/":      "",
		"/\\evil.test/":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("leo.tolstoy+1@x_y-z"))
	assert.False(t, validUsername("leo tolstoy"))
	assert.False(t, validUsername("лев"))
}
