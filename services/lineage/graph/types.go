// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import "slices"

// NodeKind discriminates the Node variant.
type NodeKind string

const (
	// NodeKindPerson is a historical person (philosopher, scientist, ruler, ...).
	NodeKindPerson NodeKind = "person"

	// NodeKindEntity is anything that is not a person: events, ideologies,
	// institutions, texts, concepts.
	NodeKindEntity NodeKind = "entity"
)

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	return k == NodeKindPerson || k == NodeKindEntity
}

// Era is an ordinal period tag.
type Era string

const (
	EraAncient      Era = "ancient"
	EraMedieval     Era = "medieval"
	EraModern       Era = "modern"
	EraContemporary Era = "contemporary"
)

// eraRanks maps Era values to their ordinal position.
var eraRanks = map[Era]int{
	EraAncient:      0,
	EraMedieval:     1,
	EraModern:       2,
	EraContemporary: 3,
}

// Rank returns the ordinal position of the era, or -1 if unknown.
func (e Era) Rank() int {
	if r, ok := eraRanks[e]; ok {
		return r
	}
	return -1
}

// String returns the era tag.
func (e Era) String() string {
	return string(e)
}

// Period is an inclusive year range. Negative years are BCE.
type Period struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Overlaps reports whether two closed year ranges intersect.
func (p Period) Overlaps(other Period) bool {
	return p.Start <= other.End && other.Start <= p.End
}

// PersonDetails holds fields that only people carry.
type PersonDetails struct {
	// BirthYear is the year of birth, if known. Negative for BCE.
	BirthYear *int `json:"birthYear,omitempty" yaml:"birthYear,omitempty"`

	// DeathYear is the year of death, if known. Negative for BCE.
	DeathYear *int `json:"deathYear,omitempty" yaml:"deathYear,omitempty"`

	// Nationality is a free-text origin label.
	Nationality string `json:"nationality,omitempty" yaml:"nationality,omitempty"`

	// School is the philosophical or scientific school.
	School string `json:"school,omitempty" yaml:"school,omitempty"`
}

// EntityDetails holds fields that only non-person entities carry.
type EntityDetails struct {
	// Location is where the entity is anchored (a city, a region).
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Founders lists person IDs credited with founding or authoring it.
	Founders []string `json:"founders,omitempty" yaml:"founders,omitempty"`
}

// Node is a graph vertex: either a person or a non-person entity.
//
// Node is a tagged variant keyed by Kind. Person is non-nil only for
// NodeKindPerson and Entity only for NodeKindEntity; use AsPerson and
// AsEntity instead of reading them directly. The engine's algorithms only
// read ID, Era, Period and Tags.
type Node struct {
	// ID is globally unique and immutable.
	ID string `json:"id" yaml:"id"`

	// Kind selects the variant.
	Kind NodeKind `json:"nodeType" yaml:"nodeType"`

	// Name is the display name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Category is a finer classification (philosopher, event, ideology).
	// Informational only.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Era is used for era-overlap comparison.
	Era Era `json:"era,omitempty" yaml:"era,omitempty"`

	// Period is the optional year range.
	Period *Period `json:"period,omitempty" yaml:"period,omitempty"`

	// Tags is a set of free-text labels; order is irrelevant.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Connections is advisory degree metadata for display. The engine
	// recomputes the true degree and never reads this field.
	Connections int `json:"connections,omitempty" yaml:"connections,omitempty"`

	Person *PersonDetails `json:"person,omitempty" yaml:"person,omitempty"`
	Entity *EntityDetails `json:"entity,omitempty" yaml:"entity,omitempty"`
}

// AsPerson returns the person details when n is a person.
func (n *Node) AsPerson() (*PersonDetails, bool) {
	if n == nil || n.Kind != NodeKindPerson {
		return nil, false
	}
	if n.Person == nil {
		return &PersonDetails{}, true
	}
	return n.Person, true
}

// AsEntity returns the entity details when n is an entity.
func (n *Node) AsEntity() (*EntityDetails, bool) {
	if n == nil || n.Kind != NodeKindEntity {
		return nil, false
	}
	if n.Entity == nil {
		return &EntityDetails{}, true
	}
	return n.Entity, true
}

// clone returns a copy of n that shares no slices or pointers with it.
func (n *Node) clone() Node {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	if n.Period != nil {
		p := *n.Period
		c.Period = &p
	}
	if n.Person != nil {
		p := *n.Person
		if n.Person.BirthYear != nil {
			y := *n.Person.BirthYear
			p.BirthYear = &y
		}
		if n.Person.DeathYear != nil {
			y := *n.Person.DeathYear
			p.DeathYear = &y
		}
		c.Person = &p
	}
	if n.Entity != nil {
		e := *n.Entity
		e.Founders = slices.Clone(n.Entity.Founders)
		c.Entity = &e
	}
	return c
}

// RelationType is an opaque relationship label. The engine never
// interprets it; the constants below are the common ones in curated data.
type RelationType string

const (
	RelationInfluenced     RelationType = "influenced"
	RelationOpposed        RelationType = "opposed"
	RelationTeacherStudent RelationType = "teacher_student"
	RelationFounded        RelationType = "founded"
	RelationContemporary   RelationType = "contemporary"
	RelationAuthored       RelationType = "authored"
)

// Edge is a directed, typed relationship between two nodes.
//
// Direction only matters for display; traversal, similarity and community
// detection treat the edge as undirected.
type Edge struct {
	// Source is the ID of the node the relationship starts from.
	Source string `json:"source" yaml:"source"`

	// Target is the ID of the node the relationship points to.
	Target string `json:"target" yaml:"target"`

	// Type is the relationship kind.
	Type RelationType `json:"type" yaml:"type"`

	// Description is free text shown alongside the relationship.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Strength is an optional weight. Zero means unspecified. Path finding
	// is unweighted and ignores it.
	Strength float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// Connects reports whether e joins a and b, in either direction.
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}
