package paths

import "testing"

func TestGlobMatcherMatch(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		patterns []string
		want     bool
	}{
		{"no patterns", "Sources/Foo/Bar.swift", nil, false},
		{"double star", "Sources/Generated/Deep/Api.swift", []string{"Sources/Generated/**"}, true},
		{"single star stays in segment", "Sources/Generated/Deep/Api.swift", []string{"Sources/Generated/*.swift"}, false},
		{"basename pattern", "Sources/Foo/Bar_generated.swift", []string{"*_generated.swift"}, true},
		{"exact path", "Sources/Foo/Bar.swift", []string{"Sources/Foo/Bar.swift"}, true},
		{"no match", "Sources/Foo/Bar.swift", []string{"Sources/Baz/**", "*.m"}, false},
		{"braces", "Sources/Foo/Bar.pb.swift", []string{"**/*.{pb,grpc}.swift"}, true},
		{"malformed pattern ignored", "Sources/Foo/Bar.swift", []string{"Sources/[", "Sources/Foo/*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (GlobMatcher{}).Match(tt.rel, tt.patterns); got != tt.want {
				t.Fatalf("Match(%q, %v) = %v, want %v", tt.rel, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestValidPatterns(t *testing.T) {
	bad := ValidPatterns([]string{"Sources/**", "Sources/[", "*.swift"})
	if len(bad) != 1 || bad[0] != "Sources/[" {
		t.Fatalf("unexpected invalid patterns %v", bad)
	}
}
