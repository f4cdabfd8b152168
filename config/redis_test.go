package config

import "testing"

func TestParseRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantAddr string
		wantDB   int
	}{
		{
			name:     "canonical url",
			url:      "redis://localhost:6379/2",
			wantAddr: "localhost:6379",
			wantDB:   2,
		},
		{
			name:     "tls url",
			url:      "rediss://cache.example.com:6380",
			wantAddr: "cache.example.com:6380",
		},
		{
			name:     "bare host and port",
			url:      "localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:     "url with credentials",
			url:      "redis://:secret@10.0.0.5:6379/1",
			wantAddr: "10.0.0.5:6379",
			wantDB:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := parseRedisOptions(tt.url)
			if opt.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", opt.Addr, tt.wantAddr)
			}
			if opt.DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", opt.DB, tt.wantDB)
			}
		})
	}
}
