package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/keithbphillips/PinballUX/internal/testsupport"
)

func TestListingCacheRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, ok, err := store.CachedListing(ctx, "backglass", time.Hour); err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	} else if ok {
		t.Fatal("expected cache miss on empty cache")
	}

	names := []string{"Xenon.png", "Banzai Run.png", "Attack From Mars.png"}
	if err := store.StoreListing(ctx, "backglass", names); err != nil {
		t.Fatalf("StoreListing failed: %v", err)
	}

	cached, ok, err := store.CachedListing(ctx, "backglass", time.Hour)
	if err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	want := []string{"Attack From Mars.png", "Banzai Run.png", "Xenon.png"}
	if len(cached) != len(want) {
		t.Fatalf("cached %d names, want %d", len(cached), len(want))
	}
	for i := range want {
		if cached[i] != want[i] {
			t.Fatalf("cached[%d] = %q, want %q", i, cached[i], want[i])
		}
	}

	if _, ok, err := store.CachedListing(ctx, "wheel", time.Hour); err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	} else if ok {
		t.Fatal("categories must not share cache entries")
	}
}

func TestListingCacheExpiry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := store.StoreListing(ctx, "dmd", []string{"BanzaiRun_DMD.mp4"}); err != nil {
		t.Fatalf("StoreListing failed: %v", err)
	}

	if _, ok, err := store.CachedListing(ctx, "dmd", time.Nanosecond); err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	} else if ok {
		t.Fatal("expected a listing older than the TTL to miss")
	}

	if _, ok, err := store.CachedListing(ctx, "dmd", 0); err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	} else if ok {
		t.Fatal("a zero TTL disables the cache")
	}
}

func TestListingCacheReplaceAndInvalidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := store.StoreListing(ctx, "table", []string{"Old.mp4"}); err != nil {
		t.Fatalf("StoreListing failed: %v", err)
	}
	if err := store.StoreListing(ctx, "table", []string{"New.mp4"}); err != nil {
		t.Fatalf("StoreListing failed: %v", err)
	}

	cached, ok, err := store.CachedListing(ctx, "table", time.Hour)
	if err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	}
	if !ok || len(cached) != 1 || cached[0] != "New.mp4" {
		t.Fatalf("expected replaced listing, got ok=%v %#v", ok, cached)
	}

	if err := store.InvalidateListing(ctx, "table"); err != nil {
		t.Fatalf("InvalidateListing failed: %v", err)
	}
	if _, ok, err := store.CachedListing(ctx, "table", time.Hour); err != nil {
		t.Fatalf("CachedListing failed: %v", err)
	} else if ok {
		t.Fatal("expected invalidated listing to miss")
	}
}
