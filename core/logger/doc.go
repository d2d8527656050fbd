// Package logger provides slog construction and attribute helpers shared by
// the session packages.
//
//	log := logger.New(logger.WithProduction("counter"))
//	log.Info("session purged",
//		logger.Component("session"),
//		logger.SessionID(id), // logs a short prefix only
//	)
package logger
