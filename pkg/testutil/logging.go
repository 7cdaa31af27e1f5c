package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// Packages that import testutil log at trace level, but only verbose test runs
// see the output.
func init() {
	logrus.SetLevel(logrus.TraceLevel)
	if !verboseArgs(os.Args[1:]) {
		logrus.SetOutput(io.Discard)
	}
}

// verboseArgs scans raw arguments since testing flags are not yet parsed
// during package initialization.
func verboseArgs(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-test.v", "-test.v=true", "-v":
			return true
		}
	}
	return false
}

// DisableLogging discards logrus output until the test completes.
func DisableLogging(t testing.TB) {
	original := logrus.StandardLogger().Out
	logrus.SetOutput(io.Discard)
	t.Cleanup(func() {
		logrus.SetOutput(original)
	})
}
