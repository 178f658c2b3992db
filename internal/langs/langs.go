// Package langs maps language codes to display names.
package langs

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Entry pairs a display name with a language code.
type Entry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var names = map[string]string{
	"af_ZA":  "Afrikaans",
	"ms_MY":  "Bahasa Melayu",
	"ca_ES":  "Català",
	"da_DK":  "Dansk",
	"de_DE":  "Deutsch",
	"et_EE":  "Eesti",
	"en_US":  "English (United States)",
	"en_GB":  "English (United Kingdom)",
	"es_ES":  "Español",
	"eo_UY":  "Esperanto",
	"eu_ES":  "Euskara",
	"fr_FR":  "Français",
	"gl_ES":  "Galego",
	"hr_HR":  "Hrvatski",
	"it_IT":  "Italiano",
	"jbo_EN": "lo jbobau",
	"oc_FR":  "Lenga d'òc",
	"hu_HU":  "Magyar",
	"nl_NL":  "Nederlands",
	"nb_NO":  "Norsk",
	"pl_PL":  "Polski",
	"pt_BR":  "Português Brasileiro",
	"pt_PT":  "Português",
	"ro_RO":  "Română",
	"sk_SK":  "Slovenčina",
	"sl_SI":  "Slovenščina",
	"fi_FI":  "Suomi",
	"sv_SE":  "Svenska",
	"vi_VN":  "Tiếng Việt",
	"tr_TR":  "Türkçe",
	"zh_CN":  "简体中文",
	"ja_JP":  "日本語",
	"zh_TW":  "繁體中文",
	"ko_KR":  "한국어",
	"cs_CZ":  "Čeština",
	"el_GR":  "Ελληνικά",
	"bg_BG":  "Български",
	"mn_MN":  "Монгол хэл",
	"ru_RU":  "Pусский язык",
	"sr_SP":  "Српски",
	"uk_UA":  "Українська мова",
	"hy_AM":  "Հայերեն",
	"he_IL":  "עִבְרִית",
	"ar_SA":  "العربية",
	"fa_IR":  "فارسی",
	"th_TH":  "ภาษาไทย",
	"la_LA":  "Latin",
	"ga_IE":  "Gaeilge",
	"be_BY":  "Беларуская мова",
	"or_OR":  "ଓଡ଼ିଆ",
	"tl":     "Filipino",
	"ug":     "ئۇيغۇر",
}

// legacy maps two-letter codes used by older releases to full codes.
var legacy = map[string]string{
	"af":  "af_ZA",
	"ar":  "ar_SA",
	"be":  "be_BY",
	"bg":  "bg_BG",
	"ca":  "ca_ES",
	"cs":  "cs_CZ",
	"da":  "da_DK",
	"de":  "de_DE",
	"el":  "el_GR",
	"en":  "en_US",
	"eo":  "eo_UY",
	"es":  "es_ES",
	"et":  "et_EE",
	"eu":  "eu_ES",
	"fa":  "fa_IR",
	"fi":  "fi_FI",
	"fr":  "fr_FR",
	"gl":  "gl_ES",
	"he":  "he_IL",
	"hr":  "hr_HR",
	"hu":  "hu_HU",
	"hy":  "hy_AM",
	"it":  "it_IT",
	"ja":  "ja_JP",
	"jbo": "jbo_EN",
	"ko":  "ko_KR",
	"la":  "la_LA",
	"mn":  "mn_MN",
	"ms":  "ms_MY",
	"nl":  "nl_NL",
	"nb":  "nb_NO",
	"no":  "nb_NO",
	"oc":  "oc_FR",
	"or":  "or_OR",
	"pl":  "pl_PL",
	"pt":  "pt_PT",
	"ro":  "ro_RO",
	"ru":  "ru_RU",
	"sk":  "sk_SK",
	"sl":  "sl_SI",
	"sr":  "sr_SP",
	"sv":  "sv_SE",
	"th":  "th_TH",
	"tr":  "tr_TR",
	"uk":  "uk_UA",
	"vi":  "vi_VN",
}

// Normalize trims code and replaces "-" with "_", so "pt-BR" and "pt_BR"
// name the same file.
func Normalize(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "-", "_")
}

// Canonical returns the full code for a legacy two-letter code, or the
// normalized code itself.
func Canonical(code string) string {
	code = Normalize(code)
	if full, ok := legacy[code]; ok {
		return full
	}
	return code
}

// DisplayName returns the native name of code. Unknown codes fall back to
// the CLDR self name and finally to the code itself.
func DisplayName(code string) string {
	code = Normalize(code)
	if name, ok := names[code]; ok {
		return name
	}
	if full, ok := legacy[code]; ok {
		if name, ok := names[full]; ok {
			return name
		}
	}
	if tag, err := language.Parse(strings.ReplaceAll(code, "_", "-")); err == nil {
		if name := display.Self.Name(tag); name != "" {
			return name
		}
	}
	return code
}

// Known returns every code of the static table, sorted by name.
func Known() []Entry {
	out := make([]Entry, 0, len(names))
	for code, name := range names {
		out = append(out, Entry{Name: name, Code: code})
	}
	SortByName(out)
	return out
}

// SortByName orders entries by case-insensitive name, then by code.
func SortByName(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
}

// FileCode derives the language code from a file name with extension ext.
// The extension match is case-insensitive.
func FileCode(filename, ext string) (string, bool) {
	if len(filename) <= len(ext) || !strings.EqualFold(filename[len(filename)-len(ext):], ext) {
		return "", false
	}
	return filename[:len(filename)-len(ext)], true
}

// FileName returns the file name for code.
func FileName(code, ext string) string {
	return Normalize(code) + ext
}
