package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestFromStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   Code
	}{
		{status: http.StatusBadRequest, code: CodeValidation},
		{status: http.StatusUnauthorized, code: CodeUnauthorized},
		{status: http.StatusForbidden, code: CodeForbidden},
		{status: http.StatusNotFound, code: CodeNotFound},
		{status: http.StatusConflict, code: CodeConflict},
		{status: http.StatusTooManyRequests, code: CodeRateLimit},
		{status: http.StatusUnprocessableEntity, code: CodeDomain},
		{status: http.StatusBadGateway, code: CodeDependency},
		{status: http.StatusInternalServerError, code: CodeDependency},
	}

	for _, tt := range tests {
		err := FromStatus(tt.status, "boom")
		if err.Code() != tt.code {
			t.Fatalf("status %d expected code %s got %s", tt.status, tt.code, err.Code())
		}
		if err.HTTPStatus() != tt.status {
			t.Fatalf("status %d not recorded, got %d", tt.status, err.HTTPStatus())
		}
		if err.Message() != "boom" {
			t.Fatalf("server message not preserved: %q", err.Message())
		}
	}
}

func TestFromStatusDefaultsPublicMessage(t *testing.T) {
	err := FromStatus(http.StatusNotFound, "")
	if err.Message() != "resource not found" {
		t.Fatalf("expected fallback public message, got %q", err.Message())
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %q", meta.PublicMessage)
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := Wrap(CodeDependency, cause, "request failed")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	typed := As(err)
	if typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestIsEmailUnverified(t *testing.T) {
	soft := New(CodeEmailUnverified, "verify your email").WithHTTPStatus(http.StatusForbidden)
	if !IsEmailUnverified(soft) {
		t.Fatalf("expected email-unverified match")
	}
	if IsEmailUnverified(New(CodeForbidden, "nope")) {
		t.Fatalf("plain forbidden must not match")
	}
	if IsEmailUnverified(nil) {
		t.Fatalf("nil must not match")
	}
}

func TestDumpFlattensChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "fetch profile").WithHTTPStatus(http.StatusServiceUnavailable)

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if d.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected http status recorded, got %d", d.HTTPStatus)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", d.Chain)
	}
}
