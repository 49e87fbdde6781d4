package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// AudioTranscriber exports audioTranscriber for mocks.
type AudioTranscriber = audioTranscriber

// NewTestTranscriber creates an OpenAITranscriber with a mock audioTranscriber.
var NewTestTranscriber = newOpenAITranscriber

// MaxUploadSize exports maxUploadSize for testing.
const MaxUploadSize = maxUploadSize

// Function exports for unit testing internal logic.
var (
	ClassifyError        = classifyError
	SegmentsFromResponse = segmentsFromResponse
)
