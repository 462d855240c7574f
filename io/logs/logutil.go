// Package logs wires logrus output to a persistent file next to stdout and
// scrubs credentials from URLs before they reach a log line.
package logs

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	joonix "github.com/joonix/log"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var _ = logrus.Hook(&WriterHook{})

// WriterHook is a hook that writes logs of specified LogLevels to specified Writer.
type WriterHook struct {
	LogLevels []logrus.Level
}

// Fire will be called when some logging function is called with current hook.
// It will format log entry to string and write it to appropriate writer.
func (hook *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	// The file logger appends its own newline.
	line = strings.TrimSuffix(line, "\n")
	fileLogger.Println(line)
	return err
}

// Levels defines on which log levels this hook would trigger.
func (hook *WriterHook) Levels() []logrus.Level {
	return hook.LogLevels
}

var fileLogger = &logrus.Logger{
	Level: logrus.TraceLevel,
}

// ConfigurePersistentLogging adds a log-to-file writer hook to the logrus
// logger. The writer hook appends new logs to the specified log file.
func ConfigurePersistentLogging(logFileName, logFileFormatName string) error {
	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304
	if err != nil {
		return err
	}
	fileLogger.SetOutput(f)

	switch logFileFormatName {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		formatter.DisableColors = true
		fileLogger.SetFormatter(formatter)
	case "fluentd":
		fileLogger.SetFormatter(joonix.NewFormatter())
	case "json":
		fileLogger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log file format %s", logFileFormatName)
	}

	logrus.Info("File logger initialized")
	logrus.AddHook(&WriterHook{
		LogLevels: logrus.AllLevels,
	})

	return nil
}

// MaskCredentialsLogging masks the url credentials before logging for security purpose
// [scheme:][//[userinfo@]host][/]path[?query][#fragment] -->  [scheme:][//[***]host][/***][#***]
// if the format is not matched nothing is done, string is returned as is.
func MaskCredentialsLogging(currURL string) string {
	maskedURL := currURL
	u, err := url.Parse(currURL)
	if err != nil {
		return currURL // Not a URL, nothing to do
	}
	// Mask the userinfo and the URI (path?query or opaque?query) and fragment,
	// leave the scheme and host(host/port) untouched.
	if u.User != nil {
		maskedURL = strings.Replace(maskedURL, u.User.String(), "***", 1)
	}
	if len(u.RequestURI()) > 1 { // Ignore the '/'
		maskedURL = strings.Replace(maskedURL, u.RequestURI(), "/***", 1)
	}
	if len(u.Fragment) > 0 {
		maskedURL = strings.Replace(maskedURL, u.RawFragment, "***", 1)
	}
	return maskedURL
}
