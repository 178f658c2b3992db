package parser

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func parseString(t *testing.T, s string, opts ...Option) *Result {
	t.Helper()
	return Parse([]byte(s), opts...)
}

func assertTranslation(t *testing.T, r *Result, key, want string) {
	t.Helper()
	got, ok := r.Translations[key]
	if !ok {
		t.Fatalf("key %q missing, translations = %v", key, r.Translations)
	}
	if got != want {
		t.Errorf("%s = %q, want %q", key, got, want)
	}
}

func TestParse_SimpleReference(t *testing.T) {
	r := parseString(t, "!!! === $ $ ;\n=== one\nHello\n=== two\n$one$ World\n")
	if r.Errors != 0 || r.Warnings != 0 {
		t.Fatalf("errors = %d, warnings = %d, want 0/0", r.Errors, r.Warnings)
	}
	if len(r.Translations) != 2 {
		t.Fatalf("len = %d, want 2", len(r.Translations))
	}
	assertTranslation(t, r, "one", "Hello")
	assertTranslation(t, r, "two", "Hello World")
}

func TestParse_AliasWithinBlock(t *testing.T) {
	r := parseString(t, "!!! === $ $ ;\n=== p alias1\n111\n=== q\n$p a1$ $a1$\n")
	if r.Errors != 0 {
		t.Fatalf("errors = %d, want 0", r.Errors)
	}
	assertTranslation(t, r, "p", "111")
	assertTranslation(t, r, "alias1", "111")
	assertTranslation(t, r, "q", "111 111")
}

func TestParse_MissingReference(t *testing.T) {
	r := parseString(t, "!!!\n=== b\nsee $missing$\n")
	if r.Errors != 1 {
		t.Fatalf("errors = %d, want 1", r.Errors)
	}
	assertTranslation(t, r, "b", "see $missing$")
	if !r.Has(KindUnresolvedReference) {
		t.Error("expected unresolved_reference diagnostic")
	}
	if r.OK() {
		t.Error("OK() = true with errors")
	}
}

func TestParse_MultiNameSharesContent(t *testing.T) {
	r := parseString(t, "!!!\n=== a b c\nX\n")
	for _, k := range []string{"a", "b", "c"} {
		assertTranslation(t, r, k, "X")
	}
	if !r.Has(KindMultiBlock) {
		t.Error("expected multi_block diagnostic")
	}
}

func TestParse_DuplicateNamesOnOneLine(t *testing.T) {
	r := parseString(t, "!!!\n=== a a b\nX\n")
	if len(r.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(r.Blocks))
	}
	if !r.Has(KindDuplicateNames) {
		t.Error("expected duplicate_names diagnostic")
	}
	if r.Warnings != 0 {
		t.Errorf("warnings = %d, want 0", r.Warnings)
	}
}

func TestParse_OverwritePrimaryIsWarning(t *testing.T) {
	r := parseString(t, "!!!\n=== a\n1\n=== a\n2\n")
	if r.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", r.Warnings)
	}
	assertTranslation(t, r, "a", "2")
}

func TestParse_OverwriteSecondaryIsInfo(t *testing.T) {
	r := parseString(t, "!!!\n=== a\n1\n=== b a\n2\n")
	if r.Warnings != 0 {
		t.Errorf("warnings = %d, want 0", r.Warnings)
	}
	if !r.Has(KindOverwrittenBlock) {
		t.Error("expected overwritten_block diagnostic")
	}
	assertTranslation(t, r, "a", "2")
	assertTranslation(t, r, "b", "2")
}

func TestParse_FirstLineIsAlwaysSettings(t *testing.T) {
	// "=== a" on line 1 becomes a two-word settings line.
	r := parseString(t, "=== a\nfoo\n")
	if len(r.Translations) != 0 {
		t.Errorf("translations = %v, want none", r.Translations)
	}
	if r.Warnings != 1 || !r.Has(KindIncompleteSettings) {
		t.Errorf("warnings = %d, want 1 incomplete_settings", r.Warnings)
	}
}

func TestParse_IncompleteSettingsKeepsMarkers(t *testing.T) {
	r := parseString(t, "!!! === {\n=== a\nx\n=== b\n$a$\n")
	if r.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", r.Warnings)
	}
	assertTranslation(t, r, "b", "x")
}

func TestParse_CommentsAndNamelessBlocks(t *testing.T) {
	r := parseString(t, "!!!\n=== a ; the a block\nx\n=== ; just a note\ndropped\n===\nalso dropped\n")
	if len(r.Translations) != 1 {
		t.Fatalf("translations = %v, want only a", r.Translations)
	}
	assertTranslation(t, r, "a", "x")
}

func TestParse_TrailingWhitespaceTrimmed(t *testing.T) {
	r := parseString(t, "!!!\n=== a\n  indented\nline two  \n\n   \n")
	assertTranslation(t, r, "a", "  indented\nline two")

	r = parseString(t, "!!!\n=== b\nvalue\t\u00a0\u3000\n")
	assertTranslation(t, r, "b", "value")
}

func TestParse_CRLFLineEndings(t *testing.T) {
	r := parseString(t, "!!!\r\n=== one\r\nHello\r\n=== two\r\n$one$!\r\n")
	assertTranslation(t, r, "two", "Hello!")
}

func TestParse_ChangingDelimitersMidFile(t *testing.T) {
	src := strings.Join([]string{
		"@@@ === $ $ ; settings",
		"=== block1 ; first block",
		"Text with $var1$ link",
		"@@@ === « » # ;",
		"=== var1",
		"Substitution",
		"=== block2 # uses the new markers",
		"Text with «var1» reference",
	}, "\n")
	r := parseString(t, src)
	if r.Errors != 0 {
		t.Fatalf("errors = %d, diagnostics = %+v", r.Errors, r.Diagnostics)
	}
	assertTranslation(t, r, "block1", "Text with Substitution link")
	assertTranslation(t, r, "block2", "Text with Substitution reference")
}

func TestParse_ReferencedBlockUsesOwnDelimiters(t *testing.T) {
	src := strings.Join([]string{
		"!!! === $ $ ;",
		"=== company ; company information",
		`"Volkswagen Group"`,
		"=== text1",
		"$company$ works",
		"===",
		"!!! *** { } % change the markers",
		"*** text2 % check for two",
		"{text1} successfully. Contacts: {company}, tel.:12345",
		"***",
		"!!! === $ $ ; back to defaults",
		"=== text3",
		"$text2$ Revenue of $company$ is down.",
	}, "\n")
	r := parseString(t, src)
	if r.Errors != 0 {
		t.Fatalf("errors = %d, diagnostics = %+v", r.Errors, r.Diagnostics)
	}
	text2 := `"Volkswagen Group" works successfully. Contacts: "Volkswagen Group", tel.:12345`
	assertTranslation(t, r, "text2", text2)
	assertTranslation(t, r, "text3", text2+` Revenue of "Volkswagen Group" is down.`)

	for _, b := range r.Blocks {
		if b.Name == "text2" && (b.Delimiters.RefStart != "{" || b.Delimiters.RefEnd != "}") {
			t.Errorf("text2 delimiters = %+v", b.Delimiters)
		}
	}
}

func TestParse_SelfReferenceStaysLiteral(t *testing.T) {
	r := parseString(t, "!!!\n=== a\nme $a$\n")
	if r.Errors != 0 {
		t.Errorf("errors = %d, want 0", r.Errors)
	}
	assertTranslation(t, r, "a", "me $a$")
}

func TestParse_IndirectCycleIsGuarded(t *testing.T) {
	r := parseString(t, "!!!\n=== a\nA $b$\n=== b\nB $a$\n")
	assertTranslation(t, r, "a", "A B $a$")
	assertTranslation(t, r, "b", "B A $b$")
	if r.Errors != 2 {
		t.Errorf("errors = %d, want 2", r.Errors)
	}
	if !r.Has(KindReferenceCycle) {
		t.Error("expected reference_cycle diagnostic")
	}
}

func TestParse_AliasScopeIsolation(t *testing.T) {
	r := parseString(t, "!!!\n=== p\n111\n=== x\n$p a1$\n=== y\n$a1$\n")
	assertTranslation(t, r, "x", "111")
	assertTranslation(t, r, "y", "$a1$")
	if r.Errors != 1 {
		t.Errorf("errors = %d, want 1", r.Errors)
	}
}

func TestParse_AliasRebindWarns(t *testing.T) {
	r := parseString(t, "!!!\n=== p\n1\n=== r\n2\n=== q\n$p x$ $r x$ $x$\n")
	assertTranslation(t, r, "q", "1 2 2")
	if r.Warnings != 1 || !r.Has(KindAliasRebind) {
		t.Errorf("warnings = %d, want 1 alias_rebind", r.Warnings)
	}
}

func TestParse_AliasOfAliasIsErrorButSubstitutes(t *testing.T) {
	r := parseString(t, "!!!\n=== p\n1\n=== q\n$p x$ $x y$\n")
	assertTranslation(t, r, "q", "1 1")
	if r.Errors != 1 || !r.Has(KindAliasOfAlias) {
		t.Errorf("errors = %d, want 1 alias_of_alias", r.Errors)
	}
}

func TestParse_EmptyTokenPassesThrough(t *testing.T) {
	r := parseString(t, "!!!\n=== a\ncost $ $ total\n")
	assertTranslation(t, r, "a", "cost $ $ total")
	if r.Errors != 0 {
		t.Errorf("errors = %d, want 0", r.Errors)
	}
}

func TestParse_NestedAliasesAcrossBlocks(t *testing.T) {
	src := strings.Join([]string{
		"!!! === $ $ ;",
		"=== per1 per1_todo_new",
		"111",
		"===",
		"=== per2",
		"222 and per1=$per1_todo_new$",
		"=== per3 v_1per3",
		"333 $per1 q2$ $q2$ $per2 q1$ $q1$",
		"=== per4",
		"444 $per1 q1$ $q1$ --- per3: $per3 q2$",
	}, "\n")
	r := parseString(t, src)
	if r.Errors != 0 {
		t.Fatalf("errors = %d, diagnostics = %+v", r.Errors, r.Diagnostics)
	}
	per3 := "333 111 111 222 and per1=111 222 and per1=111"
	assertTranslation(t, r, "per2", "222 and per1=111")
	assertTranslation(t, r, "per3", per3)
	assertTranslation(t, r, "v_1per3", per3)
	assertTranslation(t, r, "per4", "444 111 111 --- per3: "+per3)
}

func TestParse_AliasBoundInFirstPassUsedInSecond(t *testing.T) {
	r := parseString(t, "!!!\n=== p\n111\n=== q\n$a1$ $p a1$\n")
	assertTranslation(t, r, "q", "111 111")
	if r.Errors != 1 || !r.Has(KindUnresolvedReference) {
		t.Errorf("errors = %d, want 1 unresolved reference from the first pass", r.Errors)
	}
}

func TestParse_ResolvedContentIsIdempotent(t *testing.T) {
	first := parseString(t, "!!!\n=== one\nHello\n=== two\n$one$ World\n")
	again := parseString(t, "!!!\n=== two\n"+first.Translations["two"]+"\n")
	assertTranslation(t, again, "two", first.Translations["two"])
}

func TestParse_PassLimitTruncatesSilently(t *testing.T) {
	// b keeps its self reference literal, so every sweep over a replaces
	// each non-overlapping $b$ with $b$b$: 2, 3, then 5 copies of "b$".
	r := parseString(t, "!!!\n=== b\n$b$b$\n=== a\n$b$\n", WithMaxPasses(3))
	assertTranslation(t, r, "a", "$"+strings.Repeat("b$", 5))
	if r.Errors != 0 || r.Warnings != 0 {
		t.Errorf("errors = %d, warnings = %d, want 0/0", r.Errors, r.Warnings)
	}
	if !r.Has(KindPassLimit) {
		t.Error("expected pass_limit diagnostic")
	}
}

func TestParseFile_Missing(t *testing.T) {
	r := ParseFile(filepath.Join(t.TempDir(), "nope.lng"))
	if r.Errors != 1 || !r.Has(KindFileNotFound) {
		t.Errorf("errors = %d, want 1 file_not_found", r.Errors)
	}
	if len(r.Translations) != 0 {
		t.Errorf("translations = %v, want empty", r.Translations)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "en_US.lng")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ReturnsTranslations(t *testing.T) {
	// An incomplete settings line is only a warning.
	p := writeFile(t, "!!! ===\n=== greet\nHi\n")
	m, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m["greet"] != "Hi" {
		t.Errorf("greet = %q, want Hi", m["greet"])
	}
}

func TestLoad_AllOrNothingOnError(t *testing.T) {
	p := writeFile(t, "!!!\n=== ok\nfine\n=== bad\n$missing$\n")
	m, err := Load(p)
	if !errors.Is(err, ErrHasErrors) {
		t.Fatalf("err = %v, want ErrHasErrors", err)
	}
	if m == nil || len(m) != 0 {
		t.Errorf("map = %v, want empty non-nil", m)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "xx.lng"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if len(m) != 0 {
		t.Errorf("map = %v, want empty", m)
	}
}

// recordHandler captures log records for assertions.
type recordHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

func TestParse_LogFeedIsRateLimited(t *testing.T) {
	var refs []string
	for i := range 25 {
		refs = append(refs, "$m"+string(rune('a'+i))+"$")
	}
	h := &recordHandler{}
	r := parseString(t, "!!!\n=== a\n"+strings.Join(refs, " ")+"\n", WithLogger(slog.New(h)))
	if r.Errors != 25 {
		t.Fatalf("errors = %d, want 25", r.Errors)
	}
	if len(r.Diagnostics) != 25 {
		t.Errorf("diagnostics = %d, want all 25 recorded", len(r.Diagnostics))
	}

	var limited, summary, finished int
	for _, rec := range h.records {
		switch rec.Message {
		case "parse summary":
			summary++
		case "finished parsing file":
			finished++
		default:
			if rec.Level == slog.LevelError {
				limited++
			}
		}
	}
	if limited != logLimit+1 {
		t.Errorf("logged error lines = %d, want %d", limited, logLimit+1)
	}
	if summary != 1 || finished != 1 {
		t.Errorf("summary = %d, finished = %d, want 1/1", summary, finished)
	}
}

func TestParse_NoLoggerIsSilent(t *testing.T) {
	r := parseString(t, "!!!\n=== a\n$x$\n")
	if r.Errors != 1 {
		t.Errorf("errors = %d, want 1", r.Errors)
	}
}
