package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchURL_ExtractsParams(t *testing.T) {
	raw := "https://hh.ru/search/vacancy?text=golang+backend&area=1&experience=between3And6&salary=250000&only_with_salary=true&schedule=remote"

	params, err := ParseSearchURL(raw)
	require.NoError(t, err)

	assert.Equal(t, "golang backend", params.Text)
	assert.Equal(t, "1", params.Area)
	assert.Equal(t, "between3And6", params.Experience)
	assert.Equal(t, 250000, params.Salary)
	assert.True(t, params.OnlyWithSalary)
	assert.Equal(t, "remote", params.Schedule)
}

func TestParseSearchURL_RejectsForeignHost(t *testing.T) {
	_, err := ParseSearchURL("https://example.com/jobs?text=golang")
	require.ErrorIs(t, err, ErrNotSearchURL)
}

func TestParseSearchURL_IgnoresMalformedNumbers(t *testing.T) {
	params, err := ParseSearchURL("https://hh.ru/search/vacancy?text=go&salary=lots&period=soon")
	require.NoError(t, err)
	assert.Zero(t, params.Salary)
	assert.Zero(t, params.Period)
}

func TestValues_OmitsZeroFields(t *testing.T) {
	p := VacancySearchParams{Text: "golang", Area: "1"}

	v := p.Values()

	assert.Equal(t, "golang", v.Get("text"))
	assert.Equal(t, "1", v.Get("area"))
	assert.False(t, v.Has("salary"))
	assert.False(t, v.Has("only_with_salary"))
	assert.Equal(t, "0", v.Get("page"))
	assert.Equal(t, "20", v.Get("per_page"))
}

func TestValues_RoundTripsThroughParse(t *testing.T) {
	p := VacancySearchParams{
		Text:           "golang",
		Area:           "2",
		Experience:     "noExperience",
		Salary:         100000,
		OnlyWithSalary: true,
		Period:         7,
	}

	parsed, err := ParseSearchURL("https://hh.ru/search/vacancy?" + p.Values().Encode())
	require.NoError(t, err)
	assert.Equal(t, p.Text, parsed.Text)
	assert.Equal(t, p.Area, parsed.Area)
	assert.Equal(t, p.Experience, parsed.Experience)
	assert.Equal(t, p.Salary, parsed.Salary)
	assert.True(t, parsed.OnlyWithSalary)
	assert.Equal(t, p.Period, parsed.Period)
}
