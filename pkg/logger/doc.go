// Package logger builds the application's *slog.Logger.
//
// New returns a JSON or text logger wrapped in a Decorator. The decorator
// adds attributes pulled from the context on every record and redacts the
// value of any attribute whose key looks like a credential (token, key,
// secret, password), including attributes nested in groups:
//
//	log := logger.New(
//		logger.WithEnvironment("production", "ppp"),
//		logger.WithContextValue("workspace_id", workspaceKey{}),
//	)
//	log.Info("connected", logger.DocumentID(id), slog.String("apiToken", tok))
//	// {"msg":"connected","document_id":"...","apiToken":"[REDACTED]",...}
//
// The attribute helpers in attr.go keep attribute names consistent across
// packages.
package logger
