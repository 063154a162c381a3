package handlers

import "testing"

func TestFilterFlag(t *testing.T) {
	for _, value := range []string{"1", "true"} {
		if !filterFlag(value) {
			t.Fatalf("expected %q to enable the filter", value)
		}
	}
	for _, value := range []string{"", "0", "false", "yes", "TRUE"} {
		if filterFlag(value) {
			t.Fatalf("expected %q to leave the filter off", value)
		}
	}
}
