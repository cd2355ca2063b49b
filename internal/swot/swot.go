// Package swot models the four-category self-assessment a student completes
// before reaching the dashboard.
package swot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// ErrMissingCategory is returned when a document lacks one of the four
// top-level categories.
var ErrMissingCategory = errors.New("swot: missing category")

// Categories lists the top-level keys in wire order.
var Categories = []string{"strengths", "weaknesses", "opportunities", "threats"}

type Strengths struct {
	Technical []string `json:"technical" yaml:"technical" validate:"dive,required"`
	Soft      []string `json:"soft" yaml:"soft" validate:"dive,required"`
	Subjects  []string `json:"subjects" yaml:"subjects" validate:"dive,required"`
}

type Weaknesses struct {
	Subjects []string `json:"subjects" yaml:"subjects" validate:"dive,required"`
	Habits   []string `json:"habits" yaml:"habits" validate:"dive,required"`
	Gaps     []string `json:"gaps" yaml:"gaps" validate:"dive,required"`
}

type Opportunities struct {
	Internships  []string `json:"internships" yaml:"internships" validate:"dive,required"`
	Certs        []string `json:"certs" yaml:"certs" validate:"dive,required"`
	Projects     []string `json:"projects" yaml:"projects" validate:"dive,required"`
	Competitions []string `json:"competitions" yaml:"competitions" validate:"dive,required"`
}

type Threats struct {
	Time         []string `json:"time" yaml:"time" validate:"dive,required"`
	Resources    []string `json:"resources" yaml:"resources" validate:"dive,required"`
	Distractions []string `json:"distractions" yaml:"distractions" validate:"dive,required"`
	Confidence   []string `json:"confidence" yaml:"confidence" validate:"dive,required"`
}

// Document is a complete SWOT analysis.
type Document struct {
	Strengths     Strengths     `json:"strengths" yaml:"strengths"`
	Weaknesses    Weaknesses    `json:"weaknesses" yaml:"weaknesses"`
	Opportunities Opportunities `json:"opportunities" yaml:"opportunities"`
	Threats       Threats       `json:"threats" yaml:"threats"`
}

// Default returns a document with every list present and empty.
func Default() Document {
	var d Document
	d.Normalize()
	return d
}

// Normalize trims tags, drops blanks and duplicates, and replaces nil lists
// with empty ones so every category serializes as an array.
func (d *Document) Normalize() {
	for _, list := range d.lists() {
		*list = cleanTags(*list)
	}
}

// Validate checks that no tag is blank.
func (d *Document) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(d); err != nil {
		return fmt.Errorf("invalid swot document: %w", err)
	}
	return nil
}

// Count returns the number of tags across all categories.
func (d *Document) Count() int {
	n := 0
	for _, list := range d.lists() {
		n += len(*list)
	}
	return n
}

// Empty returns true if no tags have been entered.
func (d *Document) Empty() bool {
	return d.Count() == 0
}

// Parse decodes a JSON document. All four categories must be present;
// missing sub-lists inside a category default to empty.
func Parse(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, fmt.Errorf("swot: invalid json")
	}

	for _, category := range Categories {
		if !gjson.GetBytes(data, category).IsObject() {
			return Document{}, fmt.Errorf("%w: %s", ErrMissingCategory, category)
		}
	}

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("swot: failed to decode document: %w", err)
	}
	d.Normalize()

	return d, nil
}

func (d *Document) lists() []*[]string {
	return []*[]string{
		&d.Strengths.Technical, &d.Strengths.Soft, &d.Strengths.Subjects,
		&d.Weaknesses.Subjects, &d.Weaknesses.Habits, &d.Weaknesses.Gaps,
		&d.Opportunities.Internships, &d.Opportunities.Certs, &d.Opportunities.Projects, &d.Opportunities.Competitions,
		&d.Threats.Time, &d.Threats.Resources, &d.Threats.Distractions, &d.Threats.Confidence,
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
