package models

import "strings"

// whatsappPrefix is the provider's routing scheme for WhatsApp addresses.
const whatsappPrefix = "whatsapp:"

// NormalizeAddress trims surrounding whitespace and removes interior
// spaces from a provider-formatted address.
func NormalizeAddress(addr string) string {
	return strings.ReplaceAll(strings.TrimSpace(addr), " ", "")
}

// InboundMessage represents one provider callback. It lives for the
// duration of a single request; nothing is persisted.
type InboundMessage struct {
	Sender string // provider-formatted address, e.g. "whatsapp:+447123456789"
	Body   string
}

// UserID returns the internal chat identifier for the sender: the
// provider-formatted address with the routing prefix and the leading
// "+" stripped.
func (m InboundMessage) UserID() string {
	id := strings.TrimPrefix(m.Sender, whatsappPrefix)
	return strings.TrimPrefix(id, "+")
}

// OutboundMessage represents a reply handed to the provider for delivery.
type OutboundMessage struct {
	To   string // original sender address, routing prefix intact
	From string // configured WhatsApp-enabled number
	Body string
}
