package config

import (
	"testing"
	"time"

	"keydrill/internal/platform/testkit"
)

func TestPrefixComposition(t *testing.T) {
	c := New().Prefix("CORE_").Prefix("NGRAM_")
	t.Setenv("CORE_NGRAM_DECAY_ALPHA", "0.3")
	if got := c.MayFloat64("DECAY_ALPHA", 0.2); got != 0.3 {
		t.Fatalf("nested prefix lookup = %v, want 0.3", got)
	}
}

func TestMustString(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://localhost/keydrill")
	c := New().Prefix("SERVICE_PGSQL_")
	if got := c.MustString("DBURL"); got != "postgres://localhost/keydrill" {
		t.Fatalf("MustString = %q", got)
	}

	testkit.MustPanic(t, func() { c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	t.Setenv("X_N", "42")
	c := New().Prefix("X_")
	if got := c.MustInt("N"); got != 42 {
		t.Fatalf("MustInt = %d", got)
	}

	t.Setenv("X_BAD", "forty-two")
	testkit.MustPanic(t, func() { c.MustInt("BAD") })
	testkit.MustPanic(t, func() { c.MustInt("ABSENT") })
}

func TestMayAccessorsFallBack(t *testing.T) {
	c := New().Prefix("KD_TEST_")

	if got := c.MayString("S", "dflt"); got != "dflt" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("I", 7); got != 7 {
		t.Fatalf("MayInt default = %d", got)
	}
	if got := c.MayFloat64("F", 0.25); got != 0.25 {
		t.Fatalf("MayFloat64 default = %v", got)
	}
	if got := c.MayBool("B", true); got != true {
		t.Fatalf("MayBool default = %v", got)
	}
	if got := c.MayDuration("D", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
}

func TestMayAccessorsParse(t *testing.T) {
	t.Setenv("KD_TEST_S", "  padded  ")
	t.Setenv("KD_TEST_I", "13")
	t.Setenv("KD_TEST_F", "0.75")
	t.Setenv("KD_TEST_B", "false")
	t.Setenv("KD_TEST_D", "250ms")
	c := New().Prefix("KD_TEST_")

	if got := c.MayString("S", ""); got != "padded" {
		t.Fatalf("MayString should trim: %q", got)
	}
	if got := c.MayInt("I", 0); got != 13 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayFloat64("F", 0); got != 0.75 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if got := c.MayBool("B", true); got != false {
		t.Fatalf("MayBool = %v", got)
	}
	if got := c.MayDuration("D", 0); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
}

func TestMayAccessorsToleratesGarbage(t *testing.T) {
	t.Setenv("KD_TEST_I", "not-an-int")
	t.Setenv("KD_TEST_F", "not-a-float")
	t.Setenv("KD_TEST_B", "not-a-bool")
	t.Setenv("KD_TEST_D", "not-a-duration")
	c := New().Prefix("KD_TEST_")

	if got := c.MayInt("I", 5); got != 5 {
		t.Fatalf("bad int should fall back: %d", got)
	}
	if got := c.MayFloat64("F", 0.5); got != 0.5 {
		t.Fatalf("bad float should fall back: %v", got)
	}
	if got := c.MayBool("B", true); got != true {
		t.Fatalf("bad bool should fall back: %v", got)
	}
	if got := c.MayDuration("D", time.Minute); got != time.Minute {
		t.Fatalf("bad duration should fall back: %v", got)
	}
}
