package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerBuiltins(t *testing.T) {
	s := NewSampler("")
	assert.Equal(t, "Hello, World!", s.SampleText())
	assert.NotEmpty(t, s.SampleAudio())
	assert.NotEmpty(t, s.SampleImage())
}

func TestSamplerLoadsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.txt"), []byte("custom greeting"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.mp3"), []byte{1, 2, 3}, 0o644))

	s := NewSampler(dir)
	assert.Equal(t, "custom greeting", s.SampleText())
	assert.Equal(t, []byte{1, 2, 3}, s.SampleAudio())
	// sample.jpg absent: falls back.
	assert.Equal(t, fallbackImage, s.SampleImage())
}

func TestSamplerCopiesPayloads(t *testing.T) {
	s := NewSampler("")
	a := s.SampleAudio()
	a[0] = 0x00
	assert.NotEqual(t, a[0], s.SampleAudio()[0])
}
