// Package source locates and reads the JSON AST files of a build.
//
// A Loader discovers the variables file, the optional constants and
// dependencies files and the rule and verification files selected by
// globs. Rule and verification files are split into entries whose
// applications are checked before any node is decoded.
//
// With input.git enabled, Fetch clones or pulls the repository holding the
// files and returns the HEAD commit as the source revision.
package source
