package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"v URL", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch URL with extra params", "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ&list=PL123", "dQw4w9WgXcQ", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"not youtube", "https://example.com/video", "", false},
		{"bare domain", "https://www.youtube.com/", "", false},
		{"ID too short", "https://youtu.be/short", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ExtractVideoID(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, id, tt.wantID)
			}
		})
	}
}

func TestExtractVideoIDNeverPartial(t *testing.T) {
	id, ok := ExtractVideoID("https://youtu.be/abcdefghijk")
	if !ok {
		t.Fatal("expected a match")
	}
	if len(id) != IDLength {
		t.Errorf("ID length = %d, want %d", len(id), IDLength)
	}
}

func TestEmbedURLDeterministic(t *testing.T) {
	a := EmbedURL("dQw4w9WgXcQ")
	b := EmbedURL("dQw4w9WgXcQ")
	if a != b {
		t.Errorf("EmbedURL not deterministic: %q vs %q", a, b)
	}

	want := "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1&mute=1&controls=0&loop=1&playlist=dQw4w9WgXcQ"
	if a != want {
		t.Errorf("EmbedURL = %q, want %q", a, want)
	}
}

func TestWatchURL(t *testing.T) {
	got := WatchURL("abcdefghijk")
	want := "https://www.youtube.com/watch?v=abcdefghijk"
	if got != want {
		t.Errorf("WatchURL = %q, want %q", got, want)
	}
}
