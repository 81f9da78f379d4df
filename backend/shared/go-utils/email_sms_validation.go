package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

// ValidatePhoneNumber accepts any local or E.164 Thai number. When
// validateWithTwilio is set and a client is provided, the number is also
// confirmed with a Twilio Lookups V2 fetch.
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	validateWithTwilio bool,
	tw *twilio.RestClient,
) (bool, error) {
	e164, ok := ThaiPhoneToE164(number)
	if !ok {
		return false, nil
	}

	if validateWithTwilio && tw != nil {
		country := ThaiCountryCode
		params := &lookupsv2.FetchPhoneNumberParams{CountryCode: &country}

		_, err := tw.LookupsV2.FetchPhoneNumber(e164, params)
		if err == nil {
			return true, nil
		}

		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			if restErr.Status == 404 {
				return false, nil
			}
			return false, fmt.Errorf("twilio lookup failed: %d %s", restErr.Status, restErr.Error())
		}
		return false, err
	}

	return true, nil
}

func isValidEmailSyntax(e string) bool {
	addr, err := mail.ParseAddress(e)
	return err == nil && addr.Address == e
}

func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

// IsEmailSyntax is the offline check used by request validation.
func IsEmailSyntax(email string) bool {
	return isValidEmailSyntax(email)
}

// ValidateEmail checks syntax and MX. With validateWithSendGrid the SendGrid
// validation API must also return "valid" or "risky".
func ValidateEmail(ctx context.Context, apiKey string, email string, validateWithSendGrid bool) (bool, error) {
	if !isValidEmailSyntax(email) {
		return false, nil
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false, nil
	}
	if !hasMX(ctx, parts[1]) {
		return false, nil
	}

	if validateWithSendGrid && apiKey != "" {
		req := sendgrid.GetRequest(apiKey, "/v3/validations/email", "https://api.sendgrid.com")
		req.Method = "POST"
		body, _ := json.Marshal(map[string]string{"email": email})
		req.Body = body

		resp, err := sendgrid.API(req)
		if err != nil {
			return false, err
		}

		switch resp.StatusCode {
		case 200:
			var sg struct {
				Result struct {
					Verdict string `json:"verdict"`
				} `json:"result"`
			}
			if jsonErr := json.Unmarshal([]byte(resp.Body), &sg); jsonErr != nil {
				return false, fmt.Errorf("sendgrid JSON decode: %w", jsonErr)
			}
			verdict := strings.ToLower(sg.Result.Verdict)
			return verdict == "valid" || verdict == "risky", nil
		case 400:
			return false, nil
		default:
			return false, fmt.Errorf("sendgrid validation failed: status %d: %s", resp.StatusCode, resp.Body)
		}
	}

	return true, nil
}
