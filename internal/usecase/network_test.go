package usecase

import "testing"

func TestAllowlist_Allows(t *testing.T) {
	list, err := ParseAllowlist(" 192.168.1.10, 10.0.0.0/24 ,, 2001:db8::/32, fd00::1 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", list.Len())
	}

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"exact literal", "192.168.1.10", true},
		{"neighbour of literal", "192.168.1.11", false},
		{"inside range", "10.0.0.255", true},
		{"range network address", "10.0.0.0", true},
		{"outside range", "10.0.1.1", false},
		{"ipv4 mapped ipv6", "::ffff:10.0.0.7", true},
		{"ipv6 range", "2001:db8:1::5", true},
		{"ipv6 literal", "fd00::1", true},
		{"ipv6 outside", "2001:db9::1", false},
		{"padded address", "  192.168.1.10 ", true},
		{"empty", "", false},
		{"garbage", "not-an-ip", false},
		{"cidr as origin", "10.0.0.0/24", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Allows(tt.addr); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestAllowlist_EmptyAllowsNothing(t *testing.T) {
	list, err := ParseAllowlist("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.Allows("127.0.0.1") {
		t.Error("empty allowlist must not allow any address")
	}
}

func TestParseAllowlist_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{"10.0.0.0/33", "1.2.3", "office-router", "10.0.0.1/abc"} {
		if _, err := ParseAllowlist(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestAllowlist_RangeIsMasked(t *testing.T) {
	// Запись с ненулевыми битами хоста трактуется как сеть.
	list, err := ParseAllowlist("172.16.5.9/16")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !list.Allows("172.16.200.1") {
		t.Error("expected address in masked range to be allowed")
	}
}

func TestAllowlist_MappedRange(t *testing.T) {
	list, err := ParseAllowlist("::ffff:10.0.0.0/104")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, addr := range []string{"10.0.0.5", "::ffff:10.0.0.5", "10.255.1.1"} {
		if !list.Allows(addr) {
			t.Errorf("expected %s to be allowed", addr)
		}
	}
	if list.Allows("11.0.0.1") {
		t.Error("expected address outside mapped range to be denied")
	}

	if _, err := ParseAllowlist("::ffff:0.0.0.0/80"); err == nil {
		t.Error("expected error for mapped range shorter than /96")
	}
}
