package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/keithbphillips/PinballUX/internal/services"
)

func TestWrapTagsMarkerAndCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := services.Wrap(services.ErrRemote, "fetcher", "download", "backglass for Xenon", cause)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected ErrRemote in chain: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain: %v", err)
	}
	want := "remote archive error: fetcher: download: backglass for Xenon: connection reset"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "scanner", "walk", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback: %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if err.Error() != "validation error: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	storage := services.Wrap(services.ErrStorage, "catalog", "apply", "batch 3", errors.New("disk full"))
	if !services.IsFatal(storage) {
		t.Fatal("storage errors are fatal to the pass")
	}
	remote := services.Wrap(services.ErrRemote, "fetcher", "list", "", errors.New("timeout"))
	if services.IsFatal(remote) {
		t.Fatal("remote errors stay scoped to their operation")
	}
}
