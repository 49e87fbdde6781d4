package lang

import (
	"fmt"
	"strings"
)

// names maps the ISO 639-1 codes accepted by the speech recognition backends
// to an English display name. Whisper supports more; these cover dictation use.
var names = map[string]string{
	"af": "Afrikaans",
	"ar": "Arabic",
	"bg": "Bulgarian",
	"ca": "Catalan",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"ms": "Malay",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
	"sv": "Swedish",
	"sw": "Swahili",
	"ta": "Tamil",
	"th": "Thai",
	"tl": "Tagalog",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// Normalize lowercases a language code and uses a hyphen separator.
// "pt_BR", "PT-BR" and "pt-br" all become "pt-br".
func Normalize(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}

// BaseCode extracts the ISO 639-1 code from a locale: "pt-BR" -> "pt".
// Recognition backends accept base codes only.
func BaseCode(lang string) string {
	base, _, _ := strings.Cut(Normalize(lang), "-")
	return base
}

// Validate accepts ISO 639-1 codes ("en") and locales ("zh-CN").
// Empty means auto-detect and is valid.
func Validate(lang string) error {
	if strings.TrimSpace(lang) == "" {
		return nil
	}
	if _, ok := names[BaseCode(lang)]; !ok {
		return fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'zh-CN'): %w",
			lang, ErrInvalid)
	}
	return nil
}

// DisplayName returns the English name of the base language, or the code itself.
func DisplayName(lang string) string {
	if name, ok := names[BaseCode(lang)]; ok {
		return name
	}
	if lang == "" {
		return "auto-detect"
	}
	return lang
}
