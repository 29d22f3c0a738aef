package semantic

import (
	"fmt"
	"os"

	"github.com/brimdata/sqlsem/collation"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// CaseSensitive controls identifier matching.  When false, names are
	// compared after NFC normalization and Unicode case folding.
	CaseSensitive    bool   `yaml:"case_sensitive"`
	DefaultCharset   string `yaml:"default_charset"`
	DefaultCollation string `yaml:"default_collation"`
	// ExpandIdentifiers replaces select-list identifiers with their fully
	// qualified form in Result.SelectList.
	ExpandIdentifiers bool `yaml:"expand_identifiers"`
	// Suggestions is the maximum number of "did you mean" candidates
	// attached to a name resolution error.
	Suggestions      int `yaml:"suggestions"`
	CatalogCacheSize int `yaml:"catalog_cache_size"`
}

func DefaultConfig() Config {
	return Config{
		CaseSensitive:     true,
		DefaultCharset:    collation.DefaultCharset,
		DefaultCollation:  collation.DefaultName,
		ExpandIdentifiers: true,
		Suggestions:       3,
		CatalogCacheSize:  128,
	}
}

// LoadConfig reads a YAML configuration file.  Settings absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DefaultCharset != "" {
		if _, err := collation.CanonicalCharset(c.DefaultCharset); err != nil {
			return err
		}
	}
	if c.DefaultCollation != "" {
		if _, err := collation.New(c.DefaultCollation, collation.Coercible); err != nil {
			return err
		}
	}
	if c.Suggestions < 0 {
		return fmt.Errorf("suggestions must not be negative: %d", c.Suggestions)
	}
	return nil
}

// literalCollation is the collation stamped on character literals without
// a COLLATE clause.
func (c Config) literalCollation() collation.Collation {
	if c.DefaultCollation != "" {
		if coll, err := collation.New(c.DefaultCollation, collation.Coercible); err == nil {
			return coll
		}
	}
	coll := collation.Default(collation.Coercible)
	if c.DefaultCharset != "" {
		if cs, err := collation.CanonicalCharset(c.DefaultCharset); err == nil {
			coll.Charset = cs
		}
	}
	return coll
}

// nameMatcher compares identifiers according to the configured case
// sensitivity.
type nameMatcher struct {
	sensitive bool
	fold      cases.Caser
}

func newNameMatcher(sensitive bool) nameMatcher {
	return nameMatcher{sensitive: sensitive, fold: cases.Fold()}
}

func (m nameMatcher) key(name string) string {
	if m.sensitive {
		return name
	}
	return m.fold.String(norm.NFC.String(name))
}

func (m nameMatcher) match(a, b string) bool {
	if m.sensitive {
		return a == b
	}
	return m.key(a) == m.key(b)
}

func (m nameMatcher) matchAll(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !m.match(a[k], b[k]) {
			return false
		}
	}
	return true
}
