package guard

import "testing"

func TestIsPrivateOrLoopback(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.5", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"::1", true},
		{"fc00::1", true},
		{"fd12:3456::1", true},
		{"fe80::1", true},
		{"febf::1", true},
		{"localhost", true},
		{"localhost.", true},

		{"8.8.8.8", false},
		{"172.32.0.1", false},
		{"172.15.0.1", false},
		{"193.168.1.1", false},
		{"192.169.1.1", false},
		{"example.com", false},
		{"2001:4860:4860::8888", false},
		{"fec0::1", false},
		{"fd::1", false}, // 00fd::1, outside fc00::/7
		{"fc::1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := IsPrivateOrLoopback(tt.host); got != tt.want {
				t.Errorf("IsPrivateOrLoopback(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestIsPrivateOrLoopback_AlternateSpellings(t *testing.T) {
	// Browsers connect to the same address for each of these.
	tests := []string{
		"[::1]",
		"0:0:0:0:0:0:0:1",
		"::ffff:127.0.0.1",
		"::ffff:c0a8:101",
		"2130706433",
		"0x7f.0.0.1",
		"0177.0.0.1",
		"127.1",
		"10.1",
		"127.0.0.1.",
		"fe80::1%eth0",
	}

	for _, host := range tests {
		t.Run(host, func(t *testing.T) {
			if !IsPrivateOrLoopback(host) {
				t.Errorf("expected %q to be classified private/loopback", host)
			}
		})
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		host   string
		want   string
		wantOK bool
	}{
		{"8.8.8.8", "8.8.8.8", true},
		{"2130706433", "127.0.0.1", true},
		{"0xc0.0xa8.1.1", "192.168.1.1", true},
		{"192.168.257", "192.168.1.1", true},
		{"0x", "0.0.0.0", true},
		{"256.1.1.1", "", false},
		{"1.2.3.4.5", "", false},
		{"example.com", "", false},
		{"08.1.1.1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			addr, ok := ParseLiteral(tt.host)
			if ok != tt.wantOK {
				t.Fatalf("ParseLiteral(%q) ok = %v, want %v", tt.host, ok, tt.wantOK)
			}
			if ok && addr.String() != tt.want {
				t.Errorf("ParseLiteral(%q) = %s, want %s", tt.host, addr, tt.want)
			}
		})
	}
}

func TestCanonicalHost(t *testing.T) {
	tests := map[string]string{
		"example.com.":    "example.com",
		"0x7f.1":          "127.0.0.1",
		"::ffff:10.0.0.1": "10.0.0.1",
		"0:0:0:0:0:0:0:1": "::1",
		"sub.example.com": "sub.example.com",
	}

	for in, want := range tests {
		if got := CanonicalHost(in); got != want {
			t.Errorf("CanonicalHost(%q) = %q, want %q", in, got, want)
		}
	}
}
