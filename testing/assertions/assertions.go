// Package assertions provides log-output assertions shared by tests across
// the repo, layered on the logrus test hook.
package assertions

import (
	"strings"
	"testing"

	logTest "github.com/sirupsen/logrus/hooks/test"
)

// LogsContain checks that the desired string is a subset of the current log output.
func LogsContain(t testing.TB, hook *logTest.Hook, want string) {
	t.Helper()
	if !logsContain(hook, want) {
		t.Errorf("Expected log output to contain %q, got:\n%s", want, allLogs(hook))
	}
}

// LogsDoNotContain is the inverse of LogsContain.
func LogsDoNotContain(t testing.TB, hook *logTest.Hook, want string) {
	t.Helper()
	if logsContain(hook, want) {
		t.Errorf("Unexpected log output containing %q:\n%s", want, allLogs(hook))
	}
}

func logsContain(hook *logTest.Hook, want string) bool {
	for _, entry := range hook.AllEntries() {
		msg, err := entry.String()
		if err != nil {
			continue
		}
		if strings.Contains(msg, want) {
			return true
		}
	}
	return false
}

func allLogs(hook *logTest.Hook) string {
	var sb strings.Builder
	for _, entry := range hook.AllEntries() {
		msg, err := entry.String()
		if err != nil {
			continue
		}
		sb.WriteString(msg)
	}
	return sb.String()
}
