package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  debug ")
	c := New().Prefix("LOG_")
	if got := c.Get("LEVEL", "info"); got != "debug" {
		t.Fatalf("Get should trim: %q", got)
	}
	if got := c.Get("ABSENT", "info"); got != "info" {
		t.Fatalf("Get default = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "yes": true, "TRUE": true,
		"0": false, "no": false, "anything": false,
	}
	c := New().Prefix("KD_RAW_")
	for v, want := range cases {
		t.Setenv("KD_RAW_B", v)
		if got := c.GetBool("B", !want); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", v, got, want)
		}
	}
	if got := c.GetBool("ABSENT", true); got != true {
		t.Fatalf("GetBool default = %v", got)
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("KD_RAW_")

	t.Setenv("KD_RAW_N", "123")
	if got := c.GetInt("N", 0); got != 123 {
		t.Fatalf("GetInt = %d", got)
	}

	t.Setenv("KD_RAW_N", "12x")
	if got := c.GetInt("N", 9); got != 9 {
		t.Fatalf("GetInt non-numeric should fall back: %d", got)
	}

	if got := c.GetInt("ABSENT", 4); got != 4 {
		t.Fatalf("GetInt default = %d", got)
	}
}
