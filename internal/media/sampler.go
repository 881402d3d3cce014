// Package media supplies the canned payloads used to build replies. The
// gateway does not generate content; replies carry fixed sample text,
// audio and image data so the protocol path can be exercised end to end.
package media

import (
	"log"
	"os"
	"path/filepath"
)

// Built-in fallback payloads, used when no sample directory is configured
// or a sample file is missing. The audio and image bytes carry the real
// MP3/JPEG magic numbers so clients treating them as files behave sanely.
var (
	fallbackText  = "Hello, World!"
	fallbackAudio = []byte{0xff, 0xfb, 0x90, 0x64, 0x00, 0x00, 0x00, 0x00}
	fallbackImage = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01, 0xff, 0xd9}
)

// Sampler loads sample payloads from a directory once at construction.
type Sampler struct {
	text  string
	audio []byte
	image []byte
}

// NewSampler reads sample.txt, sample.mp3 and sample.jpg from dir. Any
// missing file falls back to a built-in payload; an empty dir uses the
// built-ins for everything.
func NewSampler(dir string) *Sampler {
	s := &Sampler{
		text:  fallbackText,
		audio: fallbackAudio,
		image: fallbackImage,
	}
	if dir == "" {
		return s
	}

	if data, ok := readSample(dir, "sample.txt"); ok {
		s.text = string(data)
	}
	if data, ok := readSample(dir, "sample.mp3"); ok {
		s.audio = data
	}
	if data, ok := readSample(dir, "sample.jpg"); ok {
		s.image = data
	}
	return s
}

func readSample(dir, name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Printf("media: %s not loaded, using built-in sample: %v", name, err)
		return nil, false
	}
	return data, true
}

func (s *Sampler) SampleText() string  { return s.text }
func (s *Sampler) SampleAudio() []byte { return append([]byte(nil), s.audio...) }
func (s *Sampler) SampleImage() []byte { return append([]byte(nil), s.image...) }
