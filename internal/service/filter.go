package service

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath-community/go-jmespath"

	"github.com/talentwire/autoapply/internal/domain/model"
)

// VacancyFilter evaluates JMESPath expressions against vacancies so a job
// search can narrow results beyond what the upstream query supports.
type VacancyFilter struct{}

func NewVacancyFilter() *VacancyFilter { return &VacancyFilter{} }

// Validate reports whether expr is a compilable JMESPath expression.
func (f *VacancyFilter) Validate(expr string) error {
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("compile filter: %w", err)
	}
	return nil
}

// Matches evaluates expr against the vacancy and reports whether the result
// is truthy. nil, false, empty strings, and empty collections are falsy,
// matching JMESPath semantics.
func (f *VacancyFilter) Matches(expr string, vacancy model.Vacancy) (bool, error) {
	doc, err := toDocument(vacancy)
	if err != nil {
		return false, err
	}
	result, err := jmespath.Search(expr, doc)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	return truthy(result), nil
}

// toDocument converts the vacancy through its JSON form so expressions see
// the same field names the upstream API uses.
func toDocument(vacancy model.Vacancy) (any, error) {
	raw, err := json.Marshal(vacancy)
	if err != nil {
		return nil, fmt.Errorf("encode vacancy: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode vacancy: %w", err)
	}
	return doc, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
