// mtranspile translates the JSON AST of an M-language program into Python
// source files.
//
// Usage:
//
//	# Translate the batch application of an AST directory
//	mtranspile build ./json
//
//	# Translate one rule file only (nothing is written)
//	mtranspile build ./json --json chap-1.json
//
//	# Save the translation state, then order and emit from it later
//	mtranspile build ./json --save-state
//	mtranspile build ./json --load-state
//
//	# Check that the AST translates and orders, without writing anything
//	mtranspile lint ./json --format json
//
//	# Rebuild on every change of the AST files
//	mtranspile watch ./json
//
//	# Show the last saved state
//	mtranspile state show
package main

func main() {
	Execute()
}
