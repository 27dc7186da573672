// Package opengine implements the operation engine: insert/find/update/
// delete, association join, and schema-evolution (add_key/drop_key) over
// the storage manager.
//
// Grounded on original_source/deeb_core/src/database/mod.rs's
// insert_one/find_one/find_many/delete_one/delete_many/update_one/
// update_many/add_key/drop_key, and on api/database/query_json.go's
// operator-dispatch style for the query-facing pieces.
package opengine

// OrderTerm sorts find_many results by a path, ascending unless Desc.
type OrderTerm struct {
	Path string
	Desc bool
}

// FindOptions controls find_many's post-filter processing: order, then
// skip, then limit, applied in that sequence. A nil Limit means no limit.
type FindOptions struct {
	Order []OrderTerm
	Skip  int
	Limit *int
}
