package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/warelabs/warelay/internal/models"
	"github.com/warelabs/warelay/internal/twilio"
)

func main() {
	to := flag.String("to", "", "Recipient address, e.g. whatsapp:+447123456789")
	body := flag.String("body", "", "Message text")
	from := flag.String("from", "", "Sender address (default: TWILIO_WHATSAPP_NUMBER)")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if *from == "" {
		*from = os.Getenv("TWILIO_WHATSAPP_NUMBER")
	}

	if *to == "" || *body == "" {
		fmt.Fprintln(os.Stderr, "Usage: sendmsg -to <whatsapp:+number> -body <text> [-from <whatsapp:+number>]")
		fmt.Fprintln(os.Stderr, "  Credentials come from TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN")
		os.Exit(1)
	}
	if accountSID == "" || authToken == "" || *from == "" {
		fmt.Fprintln(os.Stderr, "TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_NUMBER (or -from) are required")
		os.Exit(1)
	}

	client := twilio.NewClient(accountSID, authToken, *timeout)

	sid, err := client.Send(context.Background(), models.OutboundMessage{
		To:   *to,
		From: *from,
		Body: *body,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Send failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Message sent: %s\n", sid)
}
