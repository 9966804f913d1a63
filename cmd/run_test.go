package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsdr/streamcore/internal/config"
	"github.com/nsdr/streamcore/memspace"
)

func TestAllocScratchArrayResolvesSpaceAndDType(t *testing.T) {
	engine := memspace.NewEngine()
	s, err := allocScratchArray(engine, config.ArrayConfig{Space: "system", DType: "f32"})
	require.NoError(t, err)
	assert.Equal(t, memspace.SYSTEM, s.desc.Space)
	assert.Equal(t, "f32", s.dtype.String())
	s.desc.Free(engine)
}

func TestAllocScratchArrayRejectsUnknownSpace(t *testing.T) {
	engine := memspace.NewEngine()
	_, err := allocScratchArray(engine, config.ArrayConfig{Space: "nowhere", DType: "f32"})
	assert.Error(t, err)
}

func TestAllocScratchArrayRejectsUnknownDType(t *testing.T) {
	engine := memspace.NewEngine()
	_, err := allocScratchArray(engine, config.ArrayConfig{Space: "system", DType: "not-a-type"})
	assert.Error(t, err)
}

func TestBuildSourceRejectsUnknownType(t *testing.T) {
	_, err := buildSource(config.SourceConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestBuildSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packets.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	src, err := buildSource(config.SourceConfig{Type: "file", File: config.FileSourceConfig{Path: path, RecordSize: 16}})
	require.NoError(t, err)
	defer src.Close()
}
