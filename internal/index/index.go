package index

// LanguageIndex defines the interface for language indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type LanguageIndex interface {
	UpsertLanguage(row LanguageRow, translations map[string]string) error
	DeleteLanguage(code string) error
	GetChecksum(code string) (string, error)
	GetLanguage(code string) (*LanguageRow, error)
	Languages() ([]LanguageRow, error)
	Translations(code string) (map[string]string, error)
	Translate(code, key string) (string, bool, error)
	Keys(code string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies LanguageIndex at compile time.
var _ LanguageIndex = (*DB)(nil)
