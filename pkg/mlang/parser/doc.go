// Package parser decodes JSON AST files of the M language into ast nodes.
//
// A JSON AST file is an array of top-level nodes (rule groups, verification
// rules or variable declarations). Parsing happens in two stages:
//
//  1. Split: the array is cut into entries and each entry is peeked for its
//     "type", "name" and "applications" fields only.
//  2. Decode: an entry is decoded into a full ast.Node on demand.
//
// The split stage lets callers drop nodes outside the selected application
// before paying for a full decode:
//
//	p := parser.NewParser()
//	entries, err := p.Parse("json/chap-1.json")
//	if err != nil {
//	    return err
//	}
//	for _, entry := range entries {
//	    if !entry.HasApplication("batch") {
//	        continue
//	    }
//	    node, err := entry.Decode()
//	    ...
//	}
//
// # Error Handling
//
// Decoding fails with an *errors.Error of type unknown_node_kind when a
// discriminant is not known (the node JSON and a suggestion are attached),
// malformed_node when a field is missing or has the wrong JSON type, and
// malformed_enumeration for enumerations and intervals of unrecognized
// shape. Locations are JSON paths such as "[3].formulas[0].expression".
package parser
