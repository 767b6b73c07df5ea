// Package tracing provides OpenTelemetry tracing of mtranspile builds.
//
// Each build is one trace: a root "build" span with one child span per
// phase (source, symbols, translate, order, emit, state). Spans are
// exported over OTLP gRPC when telemetry.tracing.enabled is set; otherwise
// a noop tracer is used.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "translate")
//	err = translateAll(ctx)
//	tracing.End(span, err)
package tracing
