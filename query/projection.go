package query

import "github.com/acksell/dynaspec/spec"

// project narrows records to the attributes a secondary index stores. The
// main index and "all" projections return the records unchanged.
func project(s *spec.Spec, keys indexKeys, records []spec.Record) []spec.Record {
	if keys.name == spec.MainIndex {
		return records
	}
	switch keys.index.Projection {
	case spec.ProjectionKeysOnly, spec.ProjectionInclude:
	default:
		return records
	}

	keep := map[string]bool{}
	for _, a := range keys.index.KeyAttributes() {
		keep[a] = true
	}
	for _, a := range s.TableKeyAttributes() {
		keep[a] = true
	}
	if keys.index.Projection == spec.ProjectionInclude {
		for _, a := range keys.index.NonKeyAttributes {
			keep[a] = true
		}
	}

	out := make([]spec.Record, len(records))
	for i, r := range records {
		pr := make(spec.Record, len(keep))
		for a, v := range r {
			if keep[a] {
				pr[a] = v
			}
		}
		out[i] = pr
	}
	return out
}
