// Package collaborators defines the opaque service boundaries for
// speech and document processing. The engine never looks inside them;
// the stub implementations return canned results the way the demo
// services do.
package collaborators

import "context"

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
}

// Synthesizer converts prompt text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Extractor pulls structured fields out of a scanned document image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, docType string) (map[string]string, error)
}
