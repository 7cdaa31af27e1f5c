package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogFormatter is a logrus.Formatter that forwards every entry, fields
// included, to New Relic and enriches the formatted output with the linking
// metadata of the current transaction or application.
//
// Based off of: https://github.com/newrelic/go-agent/blob/f1942e10f0819e2c854d5d7289eb0dc1c52a00af/v3/integrations/logcontext-v2/nrlogrus/formatter.go
type LogFormatter struct {
	app       *newrelic.Application
	formatter logrus.Formatter
}

func NewLogFormatter(app *newrelic.Application, formatter logrus.Formatter) *LogFormatter {
	return &LogFormatter{
		app:       app,
		formatter: formatter,
	}
}

func (f *LogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	formatted, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}
	b := bytes.NewBuffer(bytes.TrimRight(formatted, "\n"))

	logData := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	if txn != nil {
		txn.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}

	b.WriteString("\n")
	return b.Bytes(), nil
}

// forwardedMessage folds the entry fields into the message, since New Relic
// log data has no structured fields.
func forwardedMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	errorString := "<nil>"
	extra := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		if k != logrus.ErrorKey {
			extra[k] = v
			continue
		}
		if typed, ok := v.(error); ok {
			errorString = fmt.Sprintf("%q", typed.Error())
		}
	}

	encoded, err := json.Marshal(extra)
	if err != nil {
		return e.Message
	}
	return fmt.Sprintf("message=%q, error=%s, data=%s", e.Message, errorString, encoded)
}
