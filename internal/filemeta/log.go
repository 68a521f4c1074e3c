package filemeta

import (
	"io"

	"github.com/sirupsen/logrus"
)

//nolint:gochecknoglobals // Shared sink for callers that pass no logger.
var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}()

func loggerOrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discardLogger
	}

	return l
}
