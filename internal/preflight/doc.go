// Package preflight provides readiness checks for external tools and
// filesystem paths that Quill depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll and CheckSystemDeps at startup so a
//     misconfigured host fails fast instead of failing mid-transcription.
//   - The CLI "quill status" command uses the same functions to display
//     tool and path health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
