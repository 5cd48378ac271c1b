package pipeline

import (
	"errors"
	"testing"
)

func TestSlugFromFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
		wantErr  error
	}{
		{filename: "My Post.md", want: "My Post"},
		{filename: "Café-au-lait!.md", want: "Cafe-au-lait"},
		{filename: "naïve_test.md", want: "naive_test"},
		{filename: "  spaced  .md", want: "spaced"},
		{filename: "Drafts/nested.md", want: "nested"},
		{filename: "v1.2 notes.md", want: "v12 notes"},
		{filename: "???.md", wantErr: ErrEmptySlug},
		{filename: "日本.md", wantErr: ErrEmptySlug},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()

			got, err := SlugFromFilename(tt.filename)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SlugFromFilename(%q) error = %v, want %v", tt.filename, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SlugFromFilename(%q) unexpected error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("SlugFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
