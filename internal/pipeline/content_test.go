package pipeline

import "testing"

func TestHasMeaningfulContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		html string
		want bool
	}{
		{html: "", want: false},
		{html: "   \n", want: false},
		{html: "<p></p>", want: false},
		{html: "<div><p> </p></div>\n", want: false},
		{html: "<!-- note -->", want: false},
		{html: "<p>hi</p>", want: true},
		{html: `<p><img src="a.png"></p>`, want: true},
		{html: "<math><mi>x</mi></math>", want: true},
		{html: "plain text", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.html, func(t *testing.T) {
			t.Parallel()

			if got := HasMeaningfulContent(tt.html); got != tt.want {
				t.Errorf("HasMeaningfulContent(%q) = %v, want %v", tt.html, got, tt.want)
			}
		})
	}
}
