// Package query implements the predicate algebra used to filter stored
// documents: dotted-path resolution, array descent, numeric coercion, and
// association join planning.
//
// Grounded on deeb_core/src/database/query.rs (the Query enum and its
// matches/associated_entities methods) and api/database/query_json.go's
// operator dispatch style.
package query

import (
	"strings"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/value"
)

// Kind identifies which predicate variant a Predicate holds.
type Kind int

const (
	KindEq Kind = iota
	KindNe
	KindLike
	KindLt
	KindLte
	KindGt
	KindGte
	KindAnd
	KindOr
	KindAssociated
	KindAll
)

// Predicate is a node in the recursive predicate tree. Exactly one set of
// fields is meaningful per Kind; see the constructors below.
type Predicate struct {
	kind Kind

	path  string
	value value.Value

	substr string

	children []Predicate

	assocEntity entity.Name
	sub         *Predicate
}

// Eq matches when the value at path equals v after path resolution.
func Eq(path string, v value.Value) Predicate { return Predicate{kind: KindEq, path: path, value: v} }

// Ne matches when Eq(path, v) would not match.
func Ne(path string, v value.Value) Predicate { return Predicate{kind: KindNe, path: path, value: v} }

// Like matches when the string at path contains substr.
func Like(path, substr string) Predicate { return Predicate{kind: KindLike, path: path, substr: substr} }

// Lt matches when the numeric value at path is less than v.
func Lt(path string, v value.Value) Predicate { return Predicate{kind: KindLt, path: path, value: v} }

// Lte matches when the numeric value at path is less than or equal to v.
func Lte(path string, v value.Value) Predicate { return Predicate{kind: KindLte, path: path, value: v} }

// Gt matches when the numeric value at path is greater than v.
func Gt(path string, v value.Value) Predicate { return Predicate{kind: KindGt, path: path, value: v} }

// Gte matches when the numeric value at path is greater than or equal to v.
func Gte(path string, v value.Value) Predicate { return Predicate{kind: KindGte, path: path, value: v} }

// And matches when every child predicate matches. An empty list always matches.
func And(children ...Predicate) Predicate { return Predicate{kind: KindAnd, children: children} }

// Or matches when any child predicate matches. An empty list never matches.
func Or(children ...Predicate) Predicate { return Predicate{kind: KindOr, children: children} }

// Associated evaluates sub against documents joined under the named
// entity's alias, and marks entityName for join planning.
func Associated(entityName entity.Name, sub Predicate) Predicate {
	return Predicate{kind: KindAssociated, assocEntity: entityName, sub: &sub}
}

// All always matches.
func All() Predicate { return Predicate{kind: KindAll} }

// Kind reports which predicate variant p is.
func (p Predicate) Kind() Kind { return p.kind }

// Path returns the path operand for path-based predicates.
func (p Predicate) Path() string { return p.path }

// Value returns the value operand for Eq/Ne/Lt/Lte/Gt/Gte predicates.
func (p Predicate) Value() value.Value { return p.value }

// Children returns the sub-predicates of an And/Or predicate.
func (p Predicate) Children() []Predicate { return p.children }

// AssociatedEntity returns the entity referenced by an Associated predicate.
func (p Predicate) AssociatedEntity() entity.Name { return p.assocEntity }

// Sub returns the sub-predicate of an Associated predicate.
func (p Predicate) Sub() Predicate {
	if p.sub == nil {
		return All()
	}
	return *p.sub
}

// AssociatedEntities recursively collects every entity named by an
// Associated node in the tree, in left-to-right order with duplicates
// preserved; callers deduplicate if needed.
func (p Predicate) AssociatedEntities() []entity.Name {
	var out []entity.Name
	p.collectAssociated(&out)
	return out
}

func (p Predicate) collectAssociated(out *[]entity.Name) {
	switch p.kind {
	case KindAssociated:
		*out = append(*out, p.assocEntity)
		p.Sub().collectAssociated(out)
	case KindAnd, KindOr:
		for _, c := range p.children {
			c.collectAssociated(out)
		}
	}
}

func splitPath(path string) []string {
	if !strings.Contains(path, ".") {
		return []string{path}
	}
	return strings.Split(path, ".")
}
