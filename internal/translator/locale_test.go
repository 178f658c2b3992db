package translator

import "testing"

func TestParseLocale(t *testing.T) {
	cases := map[string]string{
		"de_DE.UTF-8":    "de_DE",
		"pt-BR":          "pt_BR",
		"sr_RS@latin":    "sr_RS",
		"fr_FR:en_US":    "fr_FR",
		"C":              "",
		"POSIX":          "",
		"":               "",
		" ru_RU.KOI8-R ": "ru_RU",
	}
	for in, want := range cases {
		if got := parseLocale(in); got != want {
			t.Errorf("parseLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "C.UTF-8")
	t.Setenv("LANGUAGE", "uk_UA:en")
	if got := DetectLanguage(); got != "uk_UA" {
		t.Errorf("DetectLanguage = %q, want uk_UA", got)
	}

	t.Setenv("LC_ALL", "ja_JP.UTF-8")
	if got := DetectLanguage(); got != "ja_JP" {
		t.Errorf("LC_ALL should win, got %q", got)
	}
}
