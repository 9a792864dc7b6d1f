// Package locale loads the panel translations and picks a localizer for
// each request.
package locale

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/ctopbusca/ctop-busca/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const localizerKey = "localizer"

var i18nBundle *i18n.Bundle

// InitLocalizer parses every file under translation/ in i18nFS.
func InitLocalizer(i18nFS embed.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err := fs.WalkDir(i18nFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := i18nFS.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
	if err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

// Languages lists the loaded translations.
func Languages() []string {
	if i18nBundle == nil {
		return nil
	}
	tags := i18nBundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

// params are "name==value" pairs.
func createTemplateData(params []string) map[string]any {
	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, "==", 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// Localize translates key. Without a localizer the key itself is returned.
func Localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Errorf("Failed to localize message: %v", err)
		return key
	}
	return msg
}

// LocalizerMiddleware picks the language from the "lang" cookie, then
// Accept-Language, then defaultLang.
func LocalizerMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if i18nBundle == nil {
			c.Next()
			return
		}
		langs := make([]string, 0, 2)
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			langs = append(langs, cookie.Value)
		}
		langs = append(langs, c.GetHeader("Accept-Language"), defaultLang)

		c.Set(localizerKey, i18n.NewLocalizer(i18nBundle, langs...))
		c.Next()
	}
}

// FromContext returns the localizer chosen for the request, or nil.
func FromContext(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(localizerKey); ok {
		if l, ok := v.(*i18n.Localizer); ok {
			return l
		}
	}
	return nil
}
