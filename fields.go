package mercapi

import "time"

// Record is implemented by every domain record. Fields renders the record's
// data fields, nested records included, without the client reference. Two
// records hold the same data iff their Fields are deeply equal.
type Record interface {
	Fields() map[string]any
}

func deref[V any](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nested[E any, P interface {
	*E
	Record
}](p P) any {
	if p == nil {
		return nil
	}
	return p.Fields()
}

func nestedList[E any, P interface {
	*E
	Record
}](ps []P) any {
	if ps == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(ps))
	for _, p := range ps {
		m, _ := nested(p).(map[string]any)
		out = append(out, m)
	}
	return out
}

func stringList(ss []string) any {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}
