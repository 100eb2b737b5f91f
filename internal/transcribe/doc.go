// Package transcribe turns uploaded meeting audio into text.
//
// Uploads are checked against the configured formats and size limit, saved
// under a random name in the audio temp directory, and handed to an Engine.
// Engines form a closed set selected by name from configuration; WhisperX is
// the only one. It converts the upload to 16 kHz mono WAV with ffmpeg and runs
// WhisperX through uvx, joining the JSON segments into one transcript.
package transcribe
