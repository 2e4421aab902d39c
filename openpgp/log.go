package openpgp

import "github.com/sirupsen/logrus"

// logger is the narrow slice of logrus this package relies on, so the
// reader stack and visitor driver can emit optional trace output
// without forcing every caller to configure logrus themselves.
type logger interface {
	Debugf(format string, args ...interface{})
}

var defaultLogger logger = logrus.StandardLogger()

// SetLogger installs a package-wide logger for trace diagnostics (reader
// push/pop, recoverable protocol anomalies). Tests typically install a
// logrus.New() with an in-memory hook; production callers can leave the
// default (logrus.StandardLogger()) in place.
func SetLogger(l logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	defaultLogger = l
}
