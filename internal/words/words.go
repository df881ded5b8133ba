// internal/words/words.go
package words

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed data/*.txt
var dataFS embed.FS

// DefaultLanguage is the pool used when a client asks for a language we don't carry.
const DefaultLanguage = "en"

// Pools holds the per-language word lists. Lists are loaded once at startup
// and never mutated afterwards; callers must treat the returned slices as
// read-only.
type Pools struct {
	pools map[string][]string
}

// New builds a Pools from an explicit language → words map. Mostly useful for
// tests; production code loads the embedded data via Load.
func New(pools map[string][]string) *Pools {
	p := &Pools{pools: make(map[string][]string, len(pools))}
	for lang, list := range pools {
		p.pools[lang] = append([]string(nil), list...)
	}
	return p
}

// Load parses the embedded word lists, one language per data/<lang>.txt file.
func Load() (*Pools, error) {
	p := &Pools{pools: make(map[string][]string)}

	entries, err := fs.ReadDir(dataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("reading embedded word lists: %w", err)
	}
	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".txt")
		f, err := dataFS.Open("data/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("opening embedded list %s: %w", entry.Name(), err)
		}
		list, err := parseList(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing embedded list %s: %w", entry.Name(), err)
		}
		p.pools[lang] = list
	}

	if _, ok := p.pools[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("embedded data is missing the default language %q", DefaultLanguage)
	}
	return p, nil
}

// LoadDir overlays word lists from a directory of <lang>.txt files on top of
// whatever is already loaded, replacing any embedded list for the same
// language. Used for operator-supplied pools.
func (p *Pools) LoadDir(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		lang := strings.TrimSuffix(filepath.Base(path), ".txt")
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening word list %s: %w", path, err)
		}
		list, err := parseList(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parsing word list %s: %w", path, err)
		}
		if len(list) == 0 {
			return fmt.Errorf("word list %s is empty", path)
		}
		p.pools[lang] = list
	}
	return nil
}

// Get returns the pool for lang, falling back to the default language for
// unknown keys.
func (p *Pools) Get(lang string) []string {
	if list, ok := p.pools[lang]; ok {
		return list
	}
	return p.pools[DefaultLanguage]
}

// Normalize returns lang if we carry a pool for it, otherwise the default
// language. Game records always store a normalized language key.
func (p *Pools) Normalize(lang string) string {
	if _, ok := p.pools[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// Languages lists the available pool keys in sorted order.
func (p *Pools) Languages() []string {
	langs := make([]string, 0, len(p.pools))
	for lang := range p.pools {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// parseList reads one word per line, skipping blanks and '#' comments.
func parseList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}
