// Package mapping converts loosely structured, decoded JSON objects into
// typed records using declarative definitions.
//
// A Definition lists the required and optional properties of one record
// type. Each Property names the key it reads from the raw object, the field
// it fills on the record, and an Extractor that pulls (and possibly converts)
// the value. Definitions are kept in a Registry keyed by the Go type of the
// record they build.
//
// # Required and optional properties
//
// Map runs every required extractor first. If any of them fails or reports
// the value as absent, the whole call fails with a *RequiredFieldError and no
// record is built. Optional extractors never fail the call: an error or an
// absent value leaves the field at its zero value and is reported on the
// registry logger (a warning naming the type and field, followed by a debug
// record carrying the raw object and the captured error).
//
// # Construction
//
// Extracted values are gathered into a Fields set keyed by target field name
// and handed to the definition's Build function, which assembles the record:
//
//	mapping.Register(reg, &mapping.Definition[*Leaf]{
//	    Required: []mapping.Property{
//	        mapping.Prop("id", "id", mapping.As[string]("id")),
//	    },
//	    Optional: []mapping.Property{
//	        mapping.Prop("name", "name", mapping.As[string]("name")),
//	    },
//	    Build: func(f *mapping.Fields) (*Leaf, error) {
//	        return &Leaf{
//	            ID:   mapping.Get[string](f, "id"),
//	            Name: mapping.Opt[string](f, "name"),
//	        }, nil
//	    },
//	})
//
//	leaf, err := mapping.Map[*Leaf](reg, raw)
//
// # Nesting and recursion
//
// Nested and ListOf map sub-objects through the same registry. The element
// definition is resolved when the extractor runs, not when the definition is
// declared, so a definition may refer to its own record type (a category
// whose children are categories) without any placeholder or late binding.
//
// # Concurrency
//
// A Registry may be read concurrently. Mapping writes nothing shared: every
// call builds its own Fields set and record. Registration is expected to
// complete before the registry is shared between goroutines.
package mapping
