package main

import "testing"

func TestMissingKeyMessage(t *testing.T) {
	got := missingKeyMessage("svas", "de_DE", []string{"save_as", "save"})
	want := `lngkit: no key "svas" in de_DE, did you mean: save_as, save`
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}
