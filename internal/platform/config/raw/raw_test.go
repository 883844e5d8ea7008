package raw

import "testing"

func TestConf(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_LEVEL", "  info ")
	t.Setenv("LOG_CALLER", "YES")
	t.Setenv("LOG_QUIET", "off")
	t.Setenv("LOG_SAMPLE_EVERY", "10")
	t.Setenv("LOG_BAD", "-3")

	if c.Get("LEVEL", "debug") != "info" || c.Get("UNSET", "debug") != "debug" {
		t.Fatal("Get")
	}
	if !c.GetBool("CALLER", false) || c.GetBool("QUIET", true) || !c.GetBool("UNSET", true) {
		t.Fatal("GetBool")
	}
	if c.GetInt("SAMPLE_EVERY", 0) != 10 || c.GetInt("BAD", 2) != 2 || c.GetInt("UNSET", 4) != 4 {
		t.Fatal("GetInt")
	}
}
