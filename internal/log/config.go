package log

// LoggerConfig is the `log:` section of a capture session's config file,
// decoded by internal/config via viper/mapstructure (field names are
// matched case-insensitively, so no `mapstructure:` tags are needed here).
type LoggerConfig struct {
	Level     string           `yaml:"level"`
	Pattern   string           `yaml:"pattern"`
	Time      string           `yaml:"time"`
	Appenders []AppenderConfig `yaml:"appenders"`
	Formatter *FormatterConfig `yaml:"formatter,omitempty"`
}

// AppenderConfig selects one log sink ("console" or "file") and its
// freeform, appender-specific Options, decoded on demand by the appender
// that recognizes Type.
type AppenderConfig struct {
	Type    string                 `yaml:"type"`
	Level   string                 `yaml:"level,omitempty"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// FormatterConfig carries console-appender display knobs reserved for a
// future colorized/TTY-aware console writer; present so config files can
// set them without failing decode even though this build doesn't act on
// them yet.
type FormatterConfig struct {
	EnableColors   bool `yaml:"enable_colors,omitempty"`
	FullTimestamp  bool `yaml:"full_timestamp,omitempty"`
	DisableSorting bool `yaml:"disable_sorting,omitempty"`
}
