package audio

import "github.com/alnah/go-dictation/internal/segment"

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseSilenceOutput exports parseSilenceOutput for testing.
var ParseSilenceOutput = parseSilenceOutput

// SilenceDetectArgs exports silenceDetectArgs for testing.
var SilenceDetectArgs = silenceDetectArgs

// ProbeArgs exports probeArgs for testing.
var ProbeArgs = probeArgs

// TranscodeArgs exports transcodeArgs for testing.
var TranscodeArgs = transcodeArgs

// DetectSilence exports detectSilence over interleaved samples.
func DetectSilence(samples []int, channels, sampleRate, bitDepth int, thresholdDBFS, minSilence, seekStep float64) []segment.Interval {
	p := pcm{samples: samples, channels: channels, sampleRate: sampleRate, bitDepth: bitDepth}
	return detectSilence(p, thresholdDBFS, minSilence, seekStep)
}

// --- Dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// TempDirCreator exports tempDirCreator interface for testing.
type TempDirCreator = tempDirCreator

// FileRemover exports fileRemover interface for testing.
type FileRemover = fileRemover
