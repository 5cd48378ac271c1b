// Package pipeline implements the draft-to-HTML transformation stages.
//
// This package handles the per-draft stages of a rebuild:
//   - Directive parsing and stripping (<not-article>, <thumbnail:...>, <recent-articles>)
//   - First heading extraction (page title and visible H1)
//   - Preview truncation for the homepage listing
//   - Markdown to HTML conversion via Goldmark with chroma highlighting
//   - Image and internal link rewriting on the rendered HTML
//   - Table of contents generation for [TOC] markers
//   - Slug derivation from draft filenames
//
// Page composition and file output are handled by the root raven package.
// The stages here are pure functions of their input text and never touch the
// filesystem.
package pipeline
