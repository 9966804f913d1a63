package log

import "gopkg.in/natefinch/lumberjack.v2"

// FileAppenderOpt is the decoded `options:` map for an AppenderConfig of
// Type "file", backed by a size/age-rotated lumberjack.Logger.
type FileAppenderOpt struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`     // days
	Compress   bool   `mapstructure:"compress"`
}

// AddFileAppender adds a rotating file sink to m and returns m, so callers
// can chain it after AddStdout the way MultiWriter's other Add* methods do.
func (m *MultiWriter) AddFileAppender(opt FileAppenderOpt) *MultiWriter {
	return m.Add(&lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSize,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge,
		Compress:   opt.Compress,
	})
}
