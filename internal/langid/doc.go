// Package langid identifies the language of transcribed text and normalizes
// language codes to ISO 639-3. The built-in detector works from Unicode
// script distribution, which is cheap and dependency-free at inference time;
// jobs that need finer discrimination between Latin-script languages should
// supply a language hint at submission instead.
package langid
