package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"

	"github.com/warelabs/warelay/internal/twilio"
)

func main() {
	rawURL := flag.String("url", "", "Full public webhook URL, e.g. https://relay.example.com/whatsapp")
	from := flag.String("from", "", "From form field")
	body := flag.String("body", "", "Body form field")
	token := flag.String("token", "", "Auth token (default: TWILIO_AUTH_TOKEN)")
	flag.Parse()

	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	if *token == "" {
		*token = os.Getenv("TWILIO_AUTH_TOKEN")
	}

	if *rawURL == "" || *from == "" || *body == "" || *token == "" {
		fmt.Fprintln(os.Stderr, "Usage: sign -url <webhook-url> -from <sender> -body <text> [-token <auth-token>]")
		fmt.Fprintln(os.Stderr, "  Token defaults to TWILIO_AUTH_TOKEN")
		os.Exit(1)
	}

	params := url.Values{}
	params.Set("From", *from)
	params.Set("Body", *body)

	validator := twilio.NewRequestValidator(*token)
	signature := validator.Signature(*rawURL, params)

	// Output header plus a ready-to-paste request
	fmt.Printf("X-Twilio-Signature: %s\n", signature)
	fmt.Printf("curl -X POST %q \\\n", *rawURL)
	fmt.Printf("  -H 'X-Twilio-Signature: %s' \\\n", signature)
	fmt.Printf("  --data-urlencode %q --data-urlencode %q\n", "From="+*from, "Body="+*body)
}
