package dto

import (
	"fmt"
	"strings"
)

// Severity ranks generated insights
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// String method for Severity enum
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	for _, c := range []Severity{SeverityInfo, SeverityWarning, SeverityCritical} {
		if strings.EqualFold(c.String(), string(b)) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown severity: %q", string(b))
}

// Insight is a finding derived from the company's data
type Insight struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject,omitempty"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// Answer is the reply to a free-text question
type Answer struct {
	Question string `json:"question"`
	Rule     string `json:"rule"`
	Answer   string `json:"answer"`
}
