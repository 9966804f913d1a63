package log

import (
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"
)

type MultiWriter struct {
	writers []io.Writer
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

// AddStdout adds the process's standard output, as every built logger does.
func (m *MultiWriter) AddStdout() *MultiWriter {
	return m.Add(os.Stdout)
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

// decodeOptions decodes an AppenderConfig's freeform Options map into a
// concrete appender-options struct. A malformed map leaves out unchanged
// rather than failing logger startup.
func decodeOptions(options map[string]interface{}, out interface{}) {
	_ = mapstructure.Decode(options, out)
}
