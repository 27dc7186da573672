// Package entity defines the named collections (entities), their
// associations and index declarations, and the instance/engine naming
// types that the storage and operation layers key off of.
//
// Grounded on deeb_core/src/entity/mod.rs (EntityName, EntityAssociation,
// Index, Entity) and the teacher's Table/Col/Fk shape in
// api/database/types.go, generalized from SQL tables to JSON entities.
package entity

// Name identifies an entity within an engine. Distinct namespace from
// InstanceName.
type Name string

// InstanceName identifies a registered instance within an engine. Distinct
// namespace from Name.
type InstanceName string

// Association is a directed reference from one entity to another: the
// owning document's `From` field is matched against the associated
// document's `To` field, and the joined results are embedded under Alias.
type Association struct {
	EntityName Name
	From       string
	To         string
	Alias      string
}

// IndexSpec names an ordered list of column paths to build an index over,
// with optional flags. The core's index builder always behaves as sparse
// regardless of the Sparse flag (spec: "sparse behavior regardless of flag
// in this core"). The flags are not consulted by the index builder and
// are not written into the `_meta` descriptor, which records only each
// index's name and columns.
type IndexSpec struct {
	Name            string
	Columns         []string
	Unique          bool
	Sparse          bool
	CaseInsensitive bool
}

// Entity is a named collection of documents with an optional primary key,
// an ordered list of associations, and an ordered list of index
// declarations.
type Entity struct {
	Name         Name
	PrimaryKey   string // empty if none declared
	Associations []Association
	Indexes      []IndexSpec
}

// New returns an entity with no primary key, associations, or indexes.
func New(name Name) Entity {
	return Entity{Name: name}
}

// WithPrimaryKey returns a copy of e with the primary key field set.
func (e Entity) WithPrimaryKey(field string) Entity {
	e.PrimaryKey = field
	return e
}

// WithAssociation returns a copy of e with an association appended. If
// alias is empty, the associated entity's name is used as the alias.
func (e Entity) WithAssociation(entityName Name, from, to, alias string) Entity {
	if alias == "" {
		alias = string(entityName)
	}
	e.Associations = append(e.Associations, Association{
		EntityName: entityName,
		From:       from,
		To:         to,
		Alias:      alias,
	})
	return e
}

// WithIndex returns a copy of e with an index declaration appended.
func (e Entity) WithIndex(name string, columns ...string) Entity {
	e.Indexes = append(e.Indexes, IndexSpec{Name: name, Columns: columns})
	return e
}

// FindAssociation returns the association on e targeting the given entity
// name, if any.
func (e Entity) FindAssociation(target Name) (Association, bool) {
	for _, a := range e.Associations {
		if a.EntityName == target {
			return a, true
		}
	}
	return Association{}, false
}
