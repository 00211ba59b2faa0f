package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

const preferencesKey = "preferences"

// Preferences are the UI scalars kept alongside the chat data
type Preferences struct {
	Theme         string `json:"theme" yaml:"theme"`
	TextSize      string `json:"textSize" yaml:"text_size"`
	VoiceLanguage string `json:"voiceLanguage" yaml:"voice_language"`
	FontFamily    string `json:"fontFamily" yaml:"font_family"`
}

var preferenceChoices = map[string][]string{
	"theme":         {"dark", "light"},
	"textSize":      {"small", "medium", "large"},
	"voiceLanguage": {"auto", "en-US", "en-GB", "fr-FR", "es-ES", "de-DE", "it-IT", "pt-BR", "ja-JP", "ko-KR", "zh-CN"},
	"fontFamily":    {"system", "inter", "roboto", "poppins", "source-sans", "open-sans", "lato", "nunito"},
}

// PreferenceKeys lists the settable keys in display order
var PreferenceKeys = []string{"theme", "textSize", "voiceLanguage", "fontFamily"}

// DefaultPreferences returns the values used when nothing is stored
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "dark",
		TextSize:      "medium",
		VoiceLanguage: "auto",
		FontFamily:    "inter",
	}
}

// LoadPreferences reads stored preferences, filling gaps with defaults
func LoadPreferences(kv KVStore) (Preferences, error) {
	prefs := DefaultPreferences()
	data, found, err := kv.Get(preferencesKey)
	if err != nil || !found {
		return prefs, err
	}

	var stored Preferences
	if err := json.Unmarshal(data, &stored); err != nil {
		LogWarn("%v", &StorageError{Key: preferencesKey, Op: "parse", Err: err})
		return prefs, nil
	}
	for _, key := range PreferenceKeys {
		if value := stored.field(key); value != "" {
			*prefs.fieldPtr(key) = value
		}
	}
	return prefs, nil
}

// SavePreferences persists prefs
func SavePreferences(kv KVStore, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return kv.Set(preferencesKey, data)
}

// Get returns the value of key
func (p Preferences) Get(key string) (string, error) {
	if p.fieldPtr(key) == nil {
		return "", &NotFoundError{Kind: "setting", Name: key}
	}
	return p.field(key), nil
}

// Set validates value and assigns it to key
func (p *Preferences) Set(key, value string) error {
	ptr := p.fieldPtr(key)
	if ptr == nil {
		return &NotFoundError{Kind: "setting", Name: key}
	}
	if choices := preferenceChoices[key]; !slices.Contains(choices, value) {
		return &ValidationError{Field: key, Reason: fmt.Sprintf("must be one of %s", strings.Join(choices, ", "))}
	}
	*ptr = value
	return nil
}

// SpeechLanguage resolves "auto" against the user's locale: French locales get fr-FR, everything else en-US
func (p Preferences) SpeechLanguage() string {
	if p.VoiceLanguage != "" && p.VoiceLanguage != "auto" {
		return p.VoiceLanguage
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang := os.Getenv(env); lang != "" {
			if strings.HasPrefix(strings.ToLower(lang), "fr") {
				return "fr-FR"
			}
			break
		}
	}
	return "en-US"
}

func (p Preferences) field(key string) string {
	if ptr := p.fieldPtr(key); ptr != nil {
		return *ptr
	}
	return ""
}

func (p *Preferences) fieldPtr(key string) *string {
	switch key {
	case "theme":
		return &p.Theme
	case "textSize":
		return &p.TextSize
	case "voiceLanguage":
		return &p.VoiceLanguage
	case "fontFamily":
		return &p.FontFamily
	}
	return nil
}
