// Package logging turns resolved configuration into an active structured
// logging pipeline built on zerolog.
//
// A [Bridge] is constructed around a shared [config.Store] handle and
// activated with [Bridge.Apply]. The logging section of the configuration is
// interpreted either as a declarative, version-tagged schema (formatters,
// handlers, root routing) or as a small set of flat fields that feed a
// default console + rotating-file pipeline. Re-applying fully replaces the
// previous pipeline; [Bridge.Reset] tears it down.
//
// Every emitted record is a flat JSON object with the fixed fields
// timestamp, level, logger, service, and message. Caller-supplied extra
// fields can never overwrite the fixed fields.
package logging
