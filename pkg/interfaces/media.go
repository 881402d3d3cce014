package interfaces

// MediaSampler supplies the canned payloads used to build replies. A real
// content generator can be dropped in without touching the session code.
type MediaSampler interface {
	SampleText() string
	SampleAudio() []byte
	SampleImage() []byte
}

// BlobStore persists media payloads outside the transcript database and
// returns a location usable as a history URL.
type BlobStore interface {
	Save(name string, data []byte) (string, error)
	Get(name string) ([]byte, error)
	Delete(name string) error
}
