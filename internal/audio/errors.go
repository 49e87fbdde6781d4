package audio

import "errors"

// ErrDurationNotFound indicates the probe output carried no "Duration: HH:MM:SS.ff" line.
var ErrDurationNotFound = errors.New("duration not found in probe output")

// ErrDetectionFailed indicates FFmpeg failed while scanning for silence.
var ErrDetectionFailed = errors.New("silence detection failed")

// ErrTranscodeFailed indicates FFmpeg could not convert the input to PCM WAV.
var ErrTranscodeFailed = errors.New("audio transcode failed")

// ErrInvalidWAV indicates the decoded file is not a usable PCM WAV.
var ErrInvalidWAV = errors.New("invalid WAV file")
