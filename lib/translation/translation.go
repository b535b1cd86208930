package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Init configures the translation catalog. Unknown message IDs fall back to
// the ID itself, so English works without a locale file.
func Init(lang string) {
	gotext.Configure("locales", strings.ToLower(lang), "default")
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
