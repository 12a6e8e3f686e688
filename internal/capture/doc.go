// Package capture builds ffmpeg command lines that mix a system audio source
// and a microphone into a single WAV or MP3 file.
package capture
