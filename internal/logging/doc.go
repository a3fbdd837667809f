// Package logging builds the slog loggers used by mcpsync.
//
// Console output is either a compact line format ([Handler]) or JSON. An
// optional file sink always receives JSON. Every handler masks secrets with
// [RedactAttr], so environment values and headers of MCP servers never reach
// a log in clear text:
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.ParseFormat("text"),
//		File:   f,
//	})
//	logger.Info("applied", "name", "github", "GITHUB_TOKEN", token)
//
// Commands pass the logger through the context with [NewContext] and
// [FromContext]. Tests use [ForTest]; libraries default to [NewDiscard].
package logging
