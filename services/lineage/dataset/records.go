// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/lineage/services/lineage/graph"
	"github.com/go-playground/validator/v10"
)

// NodeRecord is one node as it appears in a dataset file. Person and
// entity fields share a flat record; ToNode moves them behind the
// matching variant.
type NodeRecord struct {
	ID          string        `json:"id" yaml:"id" validate:"required"`
	NodeType    string        `json:"nodeType" yaml:"nodeType" validate:"required,oneof=person entity"`
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Category    string        `json:"category,omitempty" yaml:"category,omitempty"`
	Era         string        `json:"era,omitempty" yaml:"era,omitempty" validate:"omitempty,oneof=ancient medieval modern contemporary"`
	Period      *graph.Period `json:"period,omitempty" yaml:"period,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive,required"`
	Connections int           `json:"connections,omitempty" yaml:"connections,omitempty" validate:"min=0"`

	// Person fields.
	BirthYear   *int   `json:"birthYear,omitempty" yaml:"birthYear,omitempty"`
	DeathYear   *int   `json:"deathYear,omitempty" yaml:"deathYear,omitempty"`
	Nationality string `json:"nationality,omitempty" yaml:"nationality,omitempty"`
	School      string `json:"school,omitempty" yaml:"school,omitempty"`

	// Entity fields.
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Founders []string `json:"founders,omitempty" yaml:"founders,omitempty"`
}

// ToNode converts the record into the engine's tagged node.
func (r NodeRecord) ToNode() graph.Node {
	n := graph.Node{
		ID:          r.ID,
		Kind:        graph.NodeKind(r.NodeType),
		Name:        r.Name,
		Category:    r.Category,
		Era:         graph.Era(r.Era),
		Period:      r.Period,
		Tags:        r.Tags,
		Connections: r.Connections,
	}
	switch n.Kind {
	case graph.NodeKindPerson:
		n.Person = &graph.PersonDetails{
			BirthYear:   r.BirthYear,
			DeathYear:   r.DeathYear,
			Nationality: r.Nationality,
			School:      r.School,
		}
	case graph.NodeKindEntity:
		n.Entity = &graph.EntityDetails{
			Location: r.Location,
			Founders: r.Founders,
		}
	}
	return n
}

// RelationshipRecord is one relationship as it appears in a dataset file.
type RelationshipRecord struct {
	Source      string  `json:"source" yaml:"source" validate:"required"`
	Target      string  `json:"target" yaml:"target" validate:"required"`
	Type        string  `json:"type" yaml:"type" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Strength    float64 `json:"strength,omitempty" yaml:"strength,omitempty" validate:"min=0"`
}

// ToEdge converts the record into an engine edge.
func (r RelationshipRecord) ToEdge() graph.Edge {
	return graph.Edge{
		Source:      r.Source,
		Target:      r.Target,
		Type:        graph.RelationType(r.Type),
		Description: r.Description,
		Strength:    r.Strength,
	}
}

// Skipped records a relationship that failed validation and was left out.
type Skipped struct {
	// Index is the record position in its file.
	Index int `json:"index"`

	// Record is the record as decoded.
	Record RelationshipRecord `json:"record"`

	// Reason describes the failed rule.
	Reason string `json:"reason"`
}

// String renders the skip for logs and CLI output.
func (s Skipped) String() string {
	return fmt.Sprintf("relationship #%d %q -> %q skipped: %s", s.Index, s.Record.Source, s.Record.Target, s.Reason)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(validatePeriod, graph.Period{})
}

// validatePeriod rejects year ranges that end before they start.
func validatePeriod(sl validator.StructLevel) {
	p := sl.Current().Interface().(graph.Period)
	if p.End < p.Start {
		sl.ReportError(p.End, "End", "end", "gtefield", "Start")
	}
}

// describe flattens validator errors into one line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
