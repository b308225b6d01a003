package tts

import "github.com/bewize/audio-generator/internal/models"

// ElevenLabs voice and model identifiers
const (
	VoiceEnglish = "9BWtsMINqrJLrRacOk9x"
	VoiceArabic  = "tavIIPLplRB883FzWU0V"
	VoiceFrench  = "pFZP5JQG7iQjIQuC4Bku"

	ModelMultilingualV2 = "eleven_multilingual_v2"
)

// DefaultVoiceSettings are applied to every narration
var DefaultVoiceSettings = models.VoiceSettings{
	Stability:       0.5,
	SimilarityBoost: 0.75,
	Speed:           1,
}

// ResolveParameters maps a language and text to synthesis parameters.
// Unknown languages use the French voice.
func ResolveParameters(language models.Language, text string) models.SynthesisParameters {
	var voiceID string
	switch language {
	case models.LanguageEnglish:
		voiceID = VoiceEnglish
	case models.LanguageArabic:
		voiceID = VoiceArabic
	case models.LanguageFrench, models.LanguageMath:
		voiceID = VoiceFrench
	default:
		voiceID = VoiceFrench
	}

	return models.SynthesisParameters{
		Text:          text,
		VoiceID:       voiceID,
		ModelID:       ModelMultilingualV2,
		VoiceSettings: DefaultVoiceSettings,
	}
}
