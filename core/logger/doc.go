// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development (console) and
// production (json) encodings.
//
// # Context Awareness
//
// WithRayID attaches the request id of a Fiber context; WithRun attaches the sync
// run id and pass name so every record-level event of a pass can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Scheduler started")
//
//	l := logger.WithRun(log, runID, "prices")
//	l.Warn("record skipped", zap.String("external_id", id), zap.Error(err))
package logger
