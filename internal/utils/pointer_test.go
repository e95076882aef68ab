package utils

import "testing"

// TestPtr verifies the pointer holds the value and does not alias the source.
func TestPtr(t *testing.T) {
	temperature := 1.4
	p := Ptr(temperature)
	if p == nil || *p != 1.4 {
		t.Fatalf("Ptr(1.4) = %v", p)
	}

	temperature = 0.2
	if *p != 1.4 {
		t.Errorf("pointer follows the source variable: %v", *p)
	}

	if s := Ptr("mistral-small-2506"); *s != "mistral-small-2506" {
		t.Errorf("Ptr(string) = %q", *s)
	}
}
