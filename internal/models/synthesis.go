package models

// AudioContentType is the content type of every generated narration
const AudioContentType = "audio/mpeg"

// VoiceSettings tunes the synthesized voice
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
}

// SynthesisParameters is everything the text-to-speech API needs for one call.
// It is derived per record and never persisted.
type SynthesisParameters struct {
	Text          string        `json:"text"`
	VoiceID       string        `json:"-"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// AudioArtifact is a synthesized narration waiting to be uploaded
type AudioArtifact struct {
	Data        []byte
	ContentType string
}

// Size returns the payload length in bytes
func (a AudioArtifact) Size() int {
	return len(a.Data)
}
