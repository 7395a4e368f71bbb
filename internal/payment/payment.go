// Package payment simulates the checkout step of a booking.  Nothing is
// charged: the details are format-checked and a mock reference is issued.
package payment

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Method is a supported mock payment method.
type Method string

const (
	MethodUPI        Method = "upi"
	MethodCard       Method = "card"
	MethodNetBanking Method = "netbanking"
	MethodWallet     Method = "wallet"
)

// Details is the payment form as submitted with a booking.
type Details struct {
	Method     string `json:"method"`
	UPIID      string `json:"upiId"`
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	CardExpiry string `json:"cardExpiry"`
	CardCVV    string `json:"cardCvv"`
	Bank       string `json:"bank"`
	Wallet     string `json:"wallet"`
}

// Result is the outcome of a successful simulation.  Ref is empty when no
// method was given.
type Result struct {
	Method Method
	Ref    string
}

// Error reports details that failed a format check.
type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
)

// Simulate checks d for its method and returns a mock reference.  A nil d or
// an empty method succeeds without checks.
func Simulate(d *Details) (Result, error) {
	if d == nil || strings.TrimSpace(d.Method) == "" {
		return Result{}, nil
	}
	m := Method(strings.ToLower(strings.TrimSpace(d.Method)))
	switch m {
	case MethodUPI:
		if !strings.Contains(d.UPIID, "@") {
			return Result{}, &Error{"please enter a valid UPI ID"}
		}
	case MethodCard:
		if !cardNumberRe.MatchString(strings.Join(strings.Fields(d.CardNumber), "")) {
			return Result{}, &Error{"card number must be 16 digits"}
		}
		if len(strings.TrimSpace(d.CardName)) < 3 {
			return Result{}, &Error{"please enter name on card"}
		}
		if !expiryRe.MatchString(d.CardExpiry) {
			return Result{}, &Error{"expiry must be in MM/YY format"}
		}
		if !cvvRe.MatchString(d.CardCVV) {
			return Result{}, &Error{"CVV must be 3 digits"}
		}
	case MethodNetBanking:
		if strings.TrimSpace(d.Bank) == "" {
			return Result{}, &Error{"please select a bank"}
		}
	case MethodWallet:
		if strings.TrimSpace(d.Wallet) == "" {
			return Result{}, &Error{"please select a wallet"}
		}
	default:
		return Result{}, &Error{"unsupported payment method"}
	}
	return Result{Method: m, Ref: "MOCK-" + uuid.NewString()}, nil
}
