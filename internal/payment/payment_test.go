package payment

import (
	"errors"
	"strings"
	"testing"
)

func TestSimulate(t *testing.T) {
	cases := []struct {
		name    string
		in      *Details
		wantErr string
	}{
		{"nil details", nil, ""},
		{"no method", &Details{}, ""},
		{"upi ok", &Details{Method: "upi", UPIID: "asha@okbank"}, ""},
		{"upi missing at", &Details{Method: "UPI", UPIID: "asha"}, "UPI ID"},
		{"card ok", &Details{Method: "card", CardNumber: "4111 1111 1111 1111", CardName: "Asha K", CardExpiry: "09/28", CardCVV: "123"}, ""},
		{"card short number", &Details{Method: "card", CardNumber: "4111", CardName: "Asha", CardExpiry: "09/28", CardCVV: "123"}, "16 digits"},
		{"card short name", &Details{Method: "card", CardNumber: "4111111111111111", CardName: " A ", CardExpiry: "09/28", CardCVV: "123"}, "name on card"},
		{"card bad expiry", &Details{Method: "card", CardNumber: "4111111111111111", CardName: "Asha", CardExpiry: "9/2028", CardCVV: "123"}, "MM/YY"},
		{"card bad cvv", &Details{Method: "card", CardNumber: "4111111111111111", CardName: "Asha", CardExpiry: "09/28", CardCVV: "12a"}, "CVV"},
		{"netbanking ok", &Details{Method: "netbanking", Bank: "HDFC"}, ""},
		{"netbanking no bank", &Details{Method: "netbanking"}, "bank"},
		{"wallet no wallet", &Details{Method: "wallet"}, "wallet"},
		{"unknown", &Details{Method: "cash"}, "unsupported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Simulate(tc.in)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tc.in != nil && tc.in.Method != "" && !strings.HasPrefix(res.Ref, "MOCK-") {
					t.Fatalf("ref = %q", res.Ref)
				}
				return
			}
			var pe *Error
			if !errors.As(err, &pe) || !strings.Contains(pe.Msg, tc.wantErr) {
				t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSimulateIssuesDistinctRefs(t *testing.T) {
	a, _ := Simulate(&Details{Method: "wallet", Wallet: "paytm"})
	b, _ := Simulate(&Details{Method: "wallet", Wallet: "paytm"})
	if a.Ref == b.Ref {
		t.Fatalf("refs repeat: %s", a.Ref)
	}
	if a.Method != MethodWallet {
		t.Fatalf("method = %q", a.Method)
	}
}
