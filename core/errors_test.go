package core_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core"
)

func TestErrorClassification(t *testing.T) {
	notFound := core.NotFoundError("therapy session")
	denied := core.PermissionDeniedError()
	down := core.NewShutdownError("db connection lost")

	tests := []struct {
		name           string
		err            error
		wantMsg        string
		wantNotFound   bool
		wantDenied     bool
		wantIsShutdown bool
	}{
		{name: "not found", err: notFound, wantMsg: "therapy session not found", wantNotFound: true},
		{name: "wrapped not found", err: errors.Wrap(notFound, "getting session"), wantMsg: "getting session: therapy session not found", wantNotFound: true},
		{name: "permission denied", err: denied, wantMsg: "permission denied", wantDenied: true},
		{name: "wrapped permission denied", err: errors.Wrap(denied, "updating session"), wantMsg: "updating session: permission denied", wantDenied: true},
		{name: "shutdown", err: down, wantMsg: "db connection lost", wantIsShutdown: true},
		{name: "plain error matches nothing", err: errors.New("boom"), wantMsg: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := core.IsNotFound(tt.err); got != tt.wantNotFound {
				t.Errorf("IsNotFound() = %t, want %t", got, tt.wantNotFound)
			}
			if got := core.IsPermissionDenied(tt.err); got != tt.wantDenied {
				t.Errorf("IsPermissionDenied() = %t, want %t", got, tt.wantDenied)
			}
			if got := core.IsShutdown(tt.err); got != tt.wantIsShutdown {
				t.Errorf("IsShutdown() = %t, want %t", got, tt.wantIsShutdown)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	bare := core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role"})
	if got := bare.Error(); got != "" {
		t.Errorf("Error() = %q, want empty for a fields-only error", got)
	}

	wrapped := core.NewValidationError(errors.New("invalid credentials"))
	if got := wrapped.Error(); got != "invalid credentials" {
		t.Errorf("Error() = %q, want %q", got, "invalid credentials")
	}
}
