// Package assets provides the page templates and stylesheet used to compose
// the site.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (defaults)
//	    ├── FilesystemLoader  - loads from the project Config/ directory
//	    └── AssetResolver     - combines both with custom-first fallback
//
// Overrides are per file: a Config/ directory holding only page_top.txt
// keeps the embedded defaults for every other template.
//
// # Directory Structure
//
// Assets are flat files in the Config/ directory:
//
//	Config/
//	├── global.css            # stylesheet copied to the site root
//	├── page_full.txt         # page skeleton
//	├── page_top.txt          # header block
//	├── page_bottom.txt       # footer block
//	├── toplinksStyle.txt     # one header link
//	├── separatorStyle.txt    # rule between heading and body
//	└── preview_item.txt      # one homepage preview
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
