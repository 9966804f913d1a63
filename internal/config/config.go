// Package config handles capture-session configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nsdr/streamcore/internal/log"
)

// SessionConfig is the top-level declarative description of one capture
// session: the process this module's cmd/ driver runs. Maps to the
// `streamcore:` root key in YAML, mirroring the teacher's `capture-agent:`
// wrapper.
type SessionConfig struct {
	Node    NodeConfig       `mapstructure:"node"`
	Log     log.LoggerConfig `mapstructure:"log"`
	Capture CaptureConfig    `mapstructure:"capture"`
	Ring    RingConfig       `mapstructure:"ring"`
	Array   ArrayConfig      `mapstructure:"array"`
}

// ─── Node ───

// NodeConfig contains process identification and scheduling settings.
type NodeConfig struct {
	Hostname     string `mapstructure:"hostname"`      // Empty = os.Hostname()
	CoreAffinity int    `mapstructure:"core_affinity"` // < 0 = no pinning, per §5
}

// ─── Capture ───

// CaptureConfig describes one capture session's source, wire format, and
// ringlet addressing, per §3's Capture state `C` and §4.G.
type CaptureConfig struct {
	Format             string       `mapstructure:"format"` // one of decoder.Formats()
	Source             SourceConfig `mapstructure:"source"`
	NSrc               int          `mapstructure:"nsrc"`
	Src0               int          `mapstructure:"src0"`
	ReadTimeout        string       `mapstructure:"read_timeout"`         // duration string, e.g. "200ms"
	MaxPacketsPerCycle int          `mapstructure:"max_packets_per_cycle"`
}

// SourceConfig selects and parameterizes one of the three Source backends.
type SourceConfig struct {
	Type string           `mapstructure:"type"` // "udp" | "raw" | "file"
	UDP  UDPSourceConfig  `mapstructure:"udp"`
	Raw  RawSourceConfig  `mapstructure:"raw"`
	File FileSourceConfig `mapstructure:"file"`
}

// UDPSourceConfig parameterizes capture.UDPSource.
type UDPSourceConfig struct {
	Addr           string `mapstructure:"addr"`
	MaxPacketBytes int    `mapstructure:"max_packet_bytes"`
}

// RawSourceConfig parameterizes capture.RawSource.
type RawSourceConfig struct {
	Device       string `mapstructure:"device"`
	SnapLen      int    `mapstructure:"snap_len"`
	BufferSizeMB int    `mapstructure:"buffer_size_mb"`
	TimeoutMs    int    `mapstructure:"timeout_ms"`
	FanoutID     int    `mapstructure:"fanout_id"`
	BPFFilter    string `mapstructure:"bpf_filter"`
}

// FileSourceConfig parameterizes capture.FileSource.
type FileSourceConfig struct {
	Path       string `mapstructure:"path"`
	RecordSize int    `mapstructure:"record_size"`
}

// ─── Ring ───

// RingConfig sizes the backing ring.Ring and the per-slot/per-source
// layout a capture.Session addresses it with, per §4.E/§4.G.
type RingConfig struct {
	CapacityBytes int64 `mapstructure:"capacity_bytes"`
	FrameBytes    int64 `mapstructure:"frame_bytes"`
	SlotNTime     int64 `mapstructure:"slot_ntime"`
	BufferNTime   int64 `mapstructure:"buffer_ntime"`
}

// ─── Array defaults ───

// ArrayConfig names the memory space and dtype of the scratch array that
// cmd's run driver allocates at startup. ndarray.Malloc itself does not
// read it; its callers always pass a space and a dtype.
type ArrayConfig struct {
	Space string `mapstructure:"space"` // memspace.Space name, e.g. "system"
	DType string `mapstructure:"dtype"` // dtype canonical name, e.g. "f32"
}

// sessionRoot is the top-level wrapper matching the YAML structure
// `streamcore: ...`.
type sessionRoot struct {
	Streamcore SessionConfig `mapstructure:"streamcore"`
}

// Load reads a SessionConfig from a YAML file at path, applying defaults
// and environment-variable overrides (STREAMCORE_ prefix, following the
// teacher's "key prefix maps to env prefix" convention).
func Load(path string) (*SessionConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root sessionRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Streamcore

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("streamcore.node.core_affinity", -1)

	v.SetDefault("streamcore.log.level", "info")
	v.SetDefault("streamcore.log.pattern", "%time [%level] %caller: %msg")
	v.SetDefault("streamcore.log.time", "2006-01-02 15:04:05")

	v.SetDefault("streamcore.capture.nsrc", 1)
	v.SetDefault("streamcore.capture.src0", 0)
	v.SetDefault("streamcore.capture.read_timeout", "200ms")
	v.SetDefault("streamcore.capture.max_packets_per_cycle", 64)
	v.SetDefault("streamcore.capture.source.type", "udp")
	v.SetDefault("streamcore.capture.source.udp.max_packet_bytes", 9000)
	v.SetDefault("streamcore.capture.source.raw.snap_len", 9000)
	v.SetDefault("streamcore.capture.source.raw.buffer_size_mb", 32)
	v.SetDefault("streamcore.capture.source.raw.timeout_ms", 200)

	v.SetDefault("streamcore.ring.capacity_bytes", 64<<20)
	v.SetDefault("streamcore.ring.frame_bytes", 8192)
	v.SetDefault("streamcore.ring.slot_ntime", 1)
	v.SetDefault("streamcore.ring.buffer_ntime", 32)

	v.SetDefault("streamcore.array.space", "system")
	v.SetDefault("streamcore.array.dtype", "f32")
}

// knownFormats avoids an import of the decoder package here, so config
// depends on no core package and there is no dependency edge between
// config and decoder in either direction. See decoder.Formats() for the
// authoritative list this must stay in sync with.
var knownFormats = map[string]bool{
	"vdif": true, "tbn": true, "drx": true, "drx8": true, "chips": true,
	"snap2": true, "ibeam": true, "pbeam": true, "cor": true, "tbx": true,
	"simple": true,
}

var knownSourceTypes = map[string]bool{"udp": true, "raw": true, "file": true}

// ValidateAndApplyDefaults checks the fields Load can't express as a
// simple viper default and fills in any that are still zero.
func (cfg *SessionConfig) ValidateAndApplyDefaults() error {
	if !knownFormats[cfg.Capture.Format] {
		return fmt.Errorf("capture.format %q is not a supported decoder format", cfg.Capture.Format)
	}
	if !knownSourceTypes[cfg.Capture.Source.Type] {
		return fmt.Errorf("capture.source.type %q must be udp, raw, or file", cfg.Capture.Source.Type)
	}
	switch cfg.Capture.Source.Type {
	case "udp":
		if cfg.Capture.Source.UDP.Addr == "" {
			return fmt.Errorf("capture.source.udp.addr is required when source.type=udp")
		}
	case "raw":
		if cfg.Capture.Source.Raw.Device == "" {
			return fmt.Errorf("capture.source.raw.device is required when source.type=raw")
		}
	case "file":
		if cfg.Capture.Source.File.Path == "" {
			return fmt.Errorf("capture.source.file.path is required when source.type=file")
		}
		if cfg.Capture.Source.File.RecordSize <= 0 {
			return fmt.Errorf("capture.source.file.record_size must be > 0 when source.type=file")
		}
	}

	if cfg.Capture.NSrc <= 0 {
		return fmt.Errorf("capture.nsrc must be > 0")
	}
	if cfg.Ring.CapacityBytes <= 0 || cfg.Ring.FrameBytes <= 0 || cfg.Ring.SlotNTime <= 0 || cfg.Ring.BufferNTime <= 0 {
		return fmt.Errorf("ring capacity_bytes, frame_bytes, slot_ntime, and buffer_ntime must all be > 0")
	}

	validLevels := map[string]bool{"panic": true, "fatal": true, "error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	return nil
}
