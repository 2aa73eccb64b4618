package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateJobSearchRequestValidate(t *testing.T) {
	base := CreateJobSearchRequest{
		UserID:       "user-1",
		Name:         "golang backend",
		SearchParams: VacancySearchParams{Text: "golang"},
	}
	assert.NoError(t, base.Validate())

	noUser := base
	noUser.UserID = "  "
	assert.Error(t, noUser.Validate())

	noName := base
	noName.Name = ""
	assert.Error(t, noName.Validate())

	longName := base
	longName.Name = strings.Repeat("x", 201)
	assert.Error(t, longName.Validate())

	longLetter := base
	longLetter.CoverLetter = strings.Repeat("x", maxCoverLetterLength+1)
	assert.Error(t, longLetter.Validate())
}

func TestCreateJobSearchRequestNormalize(t *testing.T) {
	blank := "   "
	expr := "  salary.from >= `100000`  "

	req := CreateJobSearchRequest{
		Name:             "  padded  ",
		CoverLetter:      " hello ",
		FilterExpression: &expr,
	}
	req.Normalize()

	assert.Equal(t, "padded", req.Name)
	assert.Equal(t, "hello", req.CoverLetter)
	assert.Equal(t, "salary.from >= `100000`", *req.FilterExpression)

	emptied := CreateJobSearchRequest{FilterExpression: &blank}
	emptied.Normalize()
	assert.Nil(t, emptied.FilterExpression)
}
