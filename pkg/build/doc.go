// Package build runs the transpilation pipeline.
//
// A run goes through the phases source (fetch and discover the AST
// files), symbols (variable definitions and constants), translate (rule
// and verification files of the configured application), order, and emit
// (render and atomically write the Python sources). With --load-state the
// symbols and translate phases are replaced by a snapshot restore; with
// --save-state the run stops after translation.
//
// Each phase is traced as a child span of the run and timed in the
// phase_duration_seconds histogram. Log records of a run carry its run_id.
package build
