package storage

import "testing"

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		object string
		want   string
	}{
		{name: "default host", object: "banners/1_a.png", want: "https://storage.googleapis.com/flex/banners/1_a.png"},
		{name: "custom base", base: "http://localhost:4443/", object: "/banners/1_a.png", want: "http://localhost:4443/flex/banners/1_a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicURL(tt.base, "flex", tt.object); got != tt.want {
				t.Fatalf("PublicURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObjectNameRoundTrip(t *testing.T) {
	url := PublicURL("", "flex", "banners/1_a.png")
	if got := ObjectName(url, "flex"); got != "banners/1_a.png" {
		t.Fatalf("ObjectName() = %q", got)
	}
	if got := ObjectName("https://example.com/x.png", "flex"); got != "" {
		t.Fatalf("expected empty object name for foreign url, got %q", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	if !(Config{Bucket: "flex"}).Enabled() {
		t.Fatal("config with bucket must be enabled")
	}
}
