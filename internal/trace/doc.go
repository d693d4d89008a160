// Package trace records what the binder does: the driver run, each binder
// phase, each phase of each base type and single resolution steps such as
// an override lookup or a detected cycle.
//
// Enable it from the command line:
//
//	emerge check --trace=- --trace-level=detail types.toml
//
// Events name their subject with typed fields (Type, Member) rather than
// encoding it in the event name, so a trace can be filtered by base type.
//
// Sinks: Stream writes every event as it happens; Tail keeps the last N
// events and writes them when closed, which is what is wanted when a run
// dies with an internal compiler error.
//
// Parent links follow the context: the driver stores its span with
// WithSpan and the binder hangs its phases below it.
package trace
