package model

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// VacancySearchParams is the structured form of an external vacancy query.
// Field names mirror the recruitment API's query parameters; zero values are
// omitted from the encoded query.
type VacancySearchParams struct {
	Text               string `json:"text,omitempty"`
	SearchField        string `json:"search_field,omitempty"`
	Experience         string `json:"experience,omitempty"`
	Employment         string `json:"employment,omitempty"`
	Schedule           string `json:"schedule,omitempty"`
	Area               string `json:"area,omitempty"`
	Metro              string `json:"metro,omitempty"`
	ProfessionalRole   string `json:"professional_role,omitempty"`
	Industry           string `json:"industry,omitempty"`
	EmployerID         string `json:"employer_id,omitempty"`
	ExcludedEmployerID string `json:"excluded_employer_id,omitempty"`
	Currency           string `json:"currency,omitempty"`
	Salary             int    `json:"salary,omitempty"`
	OnlyWithSalary     bool   `json:"only_with_salary,omitempty"`
	Period             int    `json:"period,omitempty"`
	DateFrom           string `json:"date_from,omitempty"`
	DateTo             string `json:"date_to,omitempty"`
	OrderBy            string `json:"order_by,omitempty"`
	Page               int    `json:"page"`
	PerPage            int    `json:"per_page"`
}

const defaultPerPage = 20

// Values encodes the params as a URL query for the external API.
func (p VacancySearchParams) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("text", p.Text)
	set("search_field", p.SearchField)
	set("experience", p.Experience)
	set("employment", p.Employment)
	set("schedule", p.Schedule)
	set("area", p.Area)
	set("metro", p.Metro)
	set("professional_role", p.ProfessionalRole)
	set("industry", p.Industry)
	set("employer_id", p.EmployerID)
	set("excluded_employer_id", p.ExcludedEmployerID)
	set("currency", p.Currency)
	if p.Salary > 0 {
		v.Set("salary", strconv.Itoa(p.Salary))
	}
	if p.OnlyWithSalary {
		v.Set("only_with_salary", "true")
	}
	if p.Period > 0 {
		v.Set("period", strconv.Itoa(p.Period))
	}
	set("date_from", p.DateFrom)
	set("date_to", p.DateTo)
	set("order_by", p.OrderBy)

	v.Set("page", strconv.Itoa(p.Page))
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// ErrNotSearchURL is returned when a pasted URL does not belong to the
// supported job board.
var ErrNotSearchURL = errors.New("url must point to an hh.ru vacancy search")

// ParseSearchURL extracts structured search params from a vacancy search URL
// pasted from the job board, so users can configure a search by copying the
// address bar instead of filling each field.
func ParseSearchURL(raw string) (VacancySearchParams, error) {
	var params VacancySearchParams

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return params, fmt.Errorf("parse search url: %w", err)
	}
	if !strings.Contains(u.Host, "hh.ru") {
		return params, ErrNotSearchURL
	}

	q := u.Query()
	params.Text = q.Get("text")
	params.SearchField = q.Get("search_field")
	params.Experience = q.Get("experience")
	params.Employment = q.Get("employment")
	params.Schedule = q.Get("schedule")
	params.Area = q.Get("area")
	params.Metro = q.Get("metro")
	params.ProfessionalRole = q.Get("professional_role")
	params.Industry = q.Get("industry")
	params.EmployerID = q.Get("employer_id")
	params.ExcludedEmployerID = q.Get("excluded_employer_id")
	params.Currency = q.Get("currency")
	params.DateFrom = q.Get("date_from")
	params.DateTo = q.Get("date_to")
	params.OrderBy = q.Get("order_by")
	if s := q.Get("salary"); s != "" {
		if n, convErr := strconv.Atoi(s); convErr == nil {
			params.Salary = n
		}
	}
	if s := q.Get("only_with_salary"); s != "" {
		params.OnlyWithSalary = strings.EqualFold(s, "true")
	}
	if s := q.Get("period"); s != "" {
		if n, convErr := strconv.Atoi(s); convErr == nil {
			params.Period = n
		}
	}
	return params, nil
}
