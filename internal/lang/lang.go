// Package lang renders user-facing message kinds. Catalogs are YAML files, one per
// locale, registered into an x/text catalog and matched against requested locales.
package lang

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale must exist in every bundle; lookups fall back to it.
const BaseLocale = "en"

//go:embed locales/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale.
type Bundle struct {
	tags    []language.Tag // tags[0] is the base locale
	matcher language.Matcher
	cat     *catalog.Builder
	keys    map[string]map[string]bool
}

// Default loads the catalogs compiled into the binary.
func Default() (*Bundle, error) {
	return Load(embedded)
}

// Load reads locales/*.yaml from fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale catalogs found")
	}
	sort.Strings(paths)

	base := language.Make(BaseLocale)
	b := &Bundle{
		cat:  catalog.NewBuilder(catalog.Fallback(base)),
		keys: make(map[string]map[string]bool),
	}

	loaded := make(map[string]map[string]string)
	var others []language.Tag
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, file.Locale, want)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		loaded[tag.String()] = file.Messages
		if tag.String() != base.String() {
			others = append(others, tag)
		}
	}

	baseMessages, ok := loaded[base.String()]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	// the catalog only walks a tag's parents, so base messages are copied into
	// every other locale that does not define them
	for _, tag := range append([]language.Tag{base}, others...) {
		messages := loaded[tag.String()]
		keys := make(map[string]bool, len(baseMessages))
		for key, msg := range baseMessages {
			if own, ok := messages[key]; ok {
				msg = own
			}
			if err := b.cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s: key %q: %w", tag, key, err)
			}
			keys[key] = true
		}
		for key, msg := range messages {
			if keys[key] {
				continue
			}
			if err := b.cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s: key %q: %w", tag, key, err)
			}
			keys[key] = true
		}
		b.keys[tag.String()] = keys
	}

	b.tags = append([]language.Tag{base}, others...)
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Text renders key in the locale closest to the requested one. Unknown keys are
// returned verbatim and never interpreted as a format, so literal strings pass through.
func (b *Bundle) Text(locale, key string, args ...any) string {
	tag := b.match(locale)
	if !b.keys[tag.String()][key] {
		if len(args) == 0 {
			return key
		}
		return key + " " + strings.TrimSuffix(fmt.Sprintln(args...), "\n")
	}
	p := message.NewPrinter(tag, message.Catalog(b.cat))
	return p.Sprintf(key, args...)
}

// Has reports whether key is defined for the locale, directly or through the base locale.
func (b *Bundle) Has(locale, key string) bool {
	return b.keys[b.match(locale).String()][key]
}

// Supported returns the canonical name of the bundle locale that serves the request,
// and false when no loaded locale is a reasonable match.
func (b *Bundle) Supported(locale string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "", false
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return b.tags[idx].String(), true
}

// Locales lists the loaded locales, base first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}
	return out
}

func (b *Bundle) match(locale string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return b.tags[0]
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.tags[0]
	}
	return b.tags[idx]
}
