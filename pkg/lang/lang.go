// Package lang holds the user-facing strings and picks a language from the
// OS locale.
package lang

import (
	"fmt"
	"strings"

	"github.com/jeandeaual/go-locale"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

type Lang int

const (
	En Lang = iota
	Fi
	De
	It
)

// supported is ordered like the Lang constants; the first entry is the
// fallback when nothing matches.
var supported = []language.Tag{
	language.English,
	language.Finnish,
	language.German,
	language.Italian,
}

var matcher = language.NewMatcher(supported)

func (l Lang) String() string {
	if int(l) < 0 || int(l) >= len(supported) {
		return "unknown"
	}
	return supported[l].String()
}

// Match returns the supported language closest to a BCP 47 tag such as
// "de-AT". Anything unparsable or unsupported falls back to English.
func Match(tag string) Lang {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	t, err := language.Parse(tag)
	if err != nil {
		return En
	}
	_, idx, confidence := matcher.Match(t)
	if confidence == language.No {
		return En
	}
	return Lang(idx)
}

// Detect resolves the language once at startup. A non-empty override wins
// over the OS locale.
func Detect(override string) Lang {
	if override != "" {
		l := Match(override)
		logrus.WithField("override", override).WithField("lang", l.String()).Info("using language from flag")
		return l
	}

	loc, err := locale.GetLocale()
	if err != nil || loc == "" {
		logrus.WithError(err).Warn("failed to get OS locale, using English")
		return En
	}

	l := Match(loc)
	logrus.WithField("locale", loc).WithField("lang", l.String()).Info("using locale")
	return l
}

// Translator returns strings of one language.
type Translator struct {
	lang Lang
}

func NewTranslator(l Lang) *Translator {
	if _, ok := tables[l]; !ok {
		l = En
	}
	return &Translator{lang: l}
}

func (t *Translator) Lang() Lang {
	return t.lang
}

// T returns the string for key, falling back to English for missing entries.
func (t *Translator) T(key Key) string {
	if s, ok := tables[t.lang][key]; ok {
		return s
	}
	return tables[En][key]
}

// Tf formats the string for key with args.
func (t *Translator) Tf(key Key, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}
