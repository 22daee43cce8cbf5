// Package vad turns raw audio into ordered speech intervals. The Segmenter
// normalizes sample rates and delegates to a Detector: either the built-in
// frame-energy detector or an external neural VAD invoked as a subprocess.
// No detected speech yields an empty interval list, never an error.
package vad
