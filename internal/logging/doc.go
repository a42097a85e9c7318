// Package logging configures the slog loggers used by pyvm.
//
// Diagnostics always go to stderr so that stdout stays reserved for command
// output such as version strings and reports. Verbosity maps onto levels via
// [LevelFromVerbosity]:
//
//	(none)  warn
//	-v      info
//	-vv     debug
//	-vvv    trace (every subprocess and HTTP exchange)
//
// The text handler colorizes level names when stderr is a terminal. The JSON
// handler is selected with --log-format json. Both mask attribute values whose
// key looks secret (token, password, ...) and the password part of URLs with
// embedded credentials.
//
// Packages that have no logger injected pick one up from the context:
//
//	logger := logging.FromContext(ctx)
//	logger.Debug("probing runtime", "command", cmd)
//
// In tests, [ForTest] routes output through t.Log.
package logging
