package models

import "testing"

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"surrounding whitespace", "  whatsapp:+447123456789 ", "whatsapp:+447123456789"},
		{"interior spaces", "whatsapp:+44 71 23 456 789", "whatsapp:+447123456789"},
		{"only whitespace", "   ", ""},
		{"clean address unchanged", "whatsapp:+447123456789", "whatsapp:+447123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAddress(tt.addr); got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestInboundMessageUserID(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		want   string
	}{
		{"whatsapp prefix stripped", "whatsapp:+447123456789", "447123456789"},
		{"bare e164 number", "+447123456789", "447123456789"},
		{"no prefix at all", "447123456789", "447123456789"},
		{"prefix only once", "whatsapp:whatsapp:+44", "whatsapp:+44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := InboundMessage{Sender: tt.sender, Body: "hello"}
			if got := m.UserID(); got != tt.want {
				t.Errorf("UserID() = %q, want %q", got, tt.want)
			}
		})
	}
}
