// Package preflight provides readiness checks for the model endpoint, the
// external binaries used for transcription, and the directories minutes
// writes to.
//
// These checks run in two contexts:
//   - The CLI "minutes doctor" command runs RunAll and prints every result.
//   - The HTTP health endpoint uses CheckOllama and CheckBinaries to report
//     whether reports and transcriptions can currently be produced.
//
// Binary checks for ffmpeg and uvx are optional when the data flow never
// reaches transcription, so their failure does not fail doctor on its own.
package preflight
