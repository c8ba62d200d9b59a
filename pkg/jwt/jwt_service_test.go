package jwt

import (
	"errors"
	"testing"
	"time"

	"kalorikollen/domain"
)

func TestDeviceTokenRoundTrip(t *testing.T) {
	svc := newJWTService("test-secret", time.Hour)
	token, err := svc.GenerateTokenDevice("device-42")
	if err != nil {
		t.Fatalf("GenerateTokenDevice: %v", err)
	}
	got, err := svc.GetDeviceIDByToken(token)
	if err != nil {
		t.Fatalf("GetDeviceIDByToken: %v", err)
	}
	if got != "device-42" {
		t.Errorf("device id = %q, want %q", got, "device-42")
	}
}

func TestDeviceTokenRejected(t *testing.T) {
	svc := newJWTService("test-secret", time.Hour)
	other := newJWTService("other-secret", time.Hour)
	foreign, _ := other.GenerateTokenDevice("device-42")

	if _, err := svc.GetDeviceIDByToken(foreign); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("foreign token err = %v, want ErrTokenInvalid", err)
	}
	if _, err := svc.GetDeviceIDByToken("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("garbage token err = %v, want ErrTokenInvalid", err)
	}

	expired := newJWTService("test-secret", -time.Minute)
	token, _ := expired.GenerateTokenDevice("device-42")
	if _, err := svc.GetDeviceIDByToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expired token err = %v, want ErrTokenExpired", err)
	}
}

func TestDeviceServiceRequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := newDeviceJWTService(secret); !errors.Is(err, domain.ErrSecretMissing) {
			t.Errorf("newDeviceJWTService(%q) err = %v, want ErrSecretMissing", secret, err)
		}
	}

	svc, err := newDeviceJWTService("test-secret")
	if err != nil {
		t.Fatalf("newDeviceJWTService: %v", err)
	}
	token, _ := svc.GenerateTokenDevice("device-7")
	if got, err := svc.GetDeviceIDByToken(token); err != nil || got != "device-7" {
		t.Errorf("GetDeviceIDByToken = %q, %v", got, err)
	}
}
