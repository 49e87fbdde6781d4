package transcribe

import "errors"

// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrFileTooLarge indicates the audio exceeds the OpenAI upload limit (25MB).
var ErrFileTooLarge = errors.New("audio file exceeds 25MB limit")

// ErrUnreachable indicates the speech recognition service could not be contacted.
var ErrUnreachable = errors.New("speech service unreachable")

// ErrInvalidEndpoint indicates a malformed speech service URL.
var ErrInvalidEndpoint = errors.New("invalid speech service URL")

// ErrMalformedResponse indicates the service answered with a body we cannot decode.
var ErrMalformedResponse = errors.New("malformed transcription response")
