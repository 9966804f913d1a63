package log

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// formatter renders a pattern string against a log entry, substituting
// %time, %level, %field, %msg, %caller, %func and %goroutine tokens.
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	out := f.pattern
	out = strings.Replace(out, "%time", entry.Time.Format(f.time), 1)
	out = strings.Replace(out, "%level", entry.Level.String(), 1)
	out = strings.Replace(out, "%field", formatFields(entry), 1)
	out = strings.Replace(out, "%msg", entry.Message, 1)
	out = strings.Replace(out, "%caller", callerSite(entry), 1)
	out = strings.Replace(out, "%func", callerFunc(entry), 1)
	out = strings.Replace(out, "%goroutine", currentGoroutineID(), 1)
	return []byte(out), nil
}

// callerSite renders "package/file.go:line" for entry's caller, falling
// back to an unwound runtime.Caller frame when logrus didn't capture one
// (ReportCaller disabled).
func callerSite(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return fmt.Sprintf("%s/%s:%d", callerPackage(entry.Caller.Function), baseName(entry.Caller.File), entry.Caller.Line)
	}
	if _, file, line, ok := runtime.Caller(8); ok {
		return fmt.Sprintf("unknown/%s:%d", baseName(file), line)
	}
	return "unknown"
}

// callerFunc renders just the function/method name, dropping the package
// qualifier runtime.Frame.Function carries.
func callerFunc(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return lastSegment(entry.Caller.Function)
	}
	if pc, _, _, ok := runtime.Caller(8); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			return lastSegment(fn.Name())
		}
	}
	return "unknown"
}

func callerPackage(qualifiedFunc string) string {
	parts := strings.Split(qualifiedFunc, ".")
	if len(parts) < 2 {
		return ""
	}
	pkgPath := strings.Split(parts[0], "/")
	return pkgPath[len(pkgPath)-1]
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i != -1 {
		return path[i+1:]
	}
	return path
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		return name[i+1:]
	}
	return name
}

// currentGoroutineID scrapes the calling goroutine's numeric id off the
// "goroutine N [state]:" header runtime.Stack always writes first; Go has
// no supported API for this, so the %goroutine token is best-effort
// diagnostics, not something to key behavior off of.
func currentGoroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return "unknown"
}

// formatFields renders entry.Data as a sorted "k=v,k=v" list so %field
// output is deterministic across runs (map iteration order is not).
func formatFields(entry *logrus.Entry) string {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, k+"="+fmt.Sprint(entry.Data[k]))
	}
	return strings.Join(fields, ",")
}
