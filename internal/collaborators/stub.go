package collaborators

import "context"

// StubTranscriber returns a fixed transcript regardless of input.
type StubTranscriber struct {
	Text string
}

func (s *StubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if s.Text == "" {
		return "haan", nil
	}
	return s.Text, nil
}

// StubSynthesizer returns empty audio.
type StubSynthesizer struct{}

func (s *StubSynthesizer) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return []byte{}, nil
}

// StubExtractor returns canned fields per document type.
type StubExtractor struct{}

func (s *StubExtractor) Extract(_ context.Context, _ []byte, docType string) (map[string]string, error) {
	switch docType {
	case "address_proof":
		return map[string]string{
			"name":    "JOHN DOE",
			"address": "VILLAGE/TOWN: MUMBAI, DISTRICT: MUMBAI, STATE: MAHARASHTRA, PIN: 400001",
		}, nil
	case "identity_proof":
		return map[string]string{
			"name":        "JOHN DOE",
			"idNumber":    "ABCDE1234F",
			"dateOfBirth": "01/01/1990",
		}, nil
	default:
		return map[string]string{"documentType": docType}, nil
	}
}
