// Maps semantic roles to the Notion property names that carry them.

package wordbook

import (
	"fmt"
	"slices"
	"strings"

	"github.com/maruel/wordbook/internal/notion"
)

// Role is the semantic meaning of a property within a collection.
type Role string

const (
	// RoleText is the record's main text. When no property is mapped, the
	// page's title property is used.
	RoleText Role = "text"
	// RoleSection is the textbook section number.
	RoleSection Role = "section"
	// RoleSequence is the item number within the section.
	RoleSequence Role = "sequence"
	// RoleStatus is the review status label.
	RoleStatus Role = "status"
	// RoleSentences is the relation to example sentence pages.
	RoleSentences Role = "sentences"
	// RoleSentenceText is an example sentence rolled up onto a word.
	RoleSentenceText Role = "sentence_text"
	// RoleUnmastered lists the words of a sentence not yet mastered.
	RoleUnmastered Role = "unmastered"
)

// Roles returns all roles in a stable order.
func Roles() []Role {
	return []Role{RoleText, RoleSection, RoleSequence, RoleStatus, RoleSentences, RoleSentenceText, RoleUnmastered}
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Roles(), r) {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// accepts reports whether a value of kind k can fill role r.
//
// This is what lets the same property name serve different roles depending
// on its encoding, e.g. "Example No" as a number rollup feeds RoleSequence
// while "Example No" as a relation feeds RoleSentences.
func (r Role) accepts(k notion.FieldKind) bool {
	switch r {
	case RoleText, RoleSentenceText, RoleUnmastered:
		return k == notion.FieldText
	case RoleSection, RoleSequence:
		return k == notion.FieldNumber || k == notion.FieldText
	case RoleStatus:
		return k == notion.FieldLabel
	case RoleSentences:
		return k == notion.FieldIDs
	default:
		return false
	}
}

// Schema is the explicit, per-collection mapping from role to the property
// names accepted for it. Names match case-insensitively after trimming.
//
// A Schema is immutable once built and safe for concurrent use.
type Schema struct {
	fields map[Role][]string
	byName map[string][]Role
}

// NewSchema builds a Schema. Unknown roles are rejected.
func NewSchema(fields map[Role][]string) (*Schema, error) {
	for role := range fields {
		if !slices.Contains(Roles(), role) {
			return nil, fmt.Errorf("unknown role %q", role)
		}
	}
	s := &Schema{
		fields: make(map[Role][]string, len(fields)),
		byName: make(map[string][]Role),
	}
	for _, role := range Roles() {
		for _, name := range fields[role] {
			key := nameKey(name)
			if key == "" {
				return nil, fmt.Errorf("role %s: empty property name", role)
			}
			s.fields[role] = append(s.fields[role], strings.TrimSpace(name))
			if !slices.Contains(s.byName[key], role) {
				s.byName[key] = append(s.byName[key], role)
			}
		}
	}
	return s, nil
}

// MustSchema is NewSchema for static tables; it panics on error.
func MustSchema(fields map[Role][]string) *Schema {
	s, err := NewSchema(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the property names mapped to role, in declaration order.
func (s *Schema) Names(role Role) []string {
	return slices.Clone(s.fields[role])
}

// Property returns the first property name mapped to role, or "".
func (s *Schema) Property(role Role) string {
	if names := s.fields[role]; len(names) > 0 {
		return names[0]
	}
	return ""
}

// Resolve returns the role property name plays given the extracted field,
// or false when the combination matches no rule.
func (s *Schema) Resolve(name string, f *notion.Field) (Role, bool) {
	if !f.Present() {
		return "", false
	}
	for _, role := range s.byName[nameKey(name)] {
		if role.accepts(f.Kind) {
			return role, true
		}
	}
	return "", false
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
