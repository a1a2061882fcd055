package evaluation

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBankYAML []byte

// Question is one quiz question.
type Question struct {
	Text string `yaml:"q"`
}

// Bank maps a lesson day to its quiz questions.
type Bank map[int][]Question

// Questions returns the questions for day, or nil when the day has none.
func (b Bank) Questions(day int) []Question {
	return b[day]
}

// ParseBank decodes a YAML question bank.
func ParseBank(data []byte) (Bank, error) {
	var doc struct {
		Days map[int][]Question `yaml:"days"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	for day, qs := range doc.Days {
		if day < 1 {
			return nil, fmt.Errorf("question bank: invalid day %d", day)
		}
		for i, q := range qs {
			if q.Text == "" {
				return nil, fmt.Errorf("question bank: day %d question %d is empty", day, i+1)
			}
		}
	}
	return Bank(doc.Days), nil
}

// DefaultBank returns the built-in question bank.
func DefaultBank() Bank {
	b, err := ParseBank(defaultBankYAML)
	if err != nil {
		panic(err)
	}
	return b
}
