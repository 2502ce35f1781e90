package app

import "github.com/dmitrymomot/ppp/pkg/document"

// DarkMode is the stored color scheme preference.
type DarkMode int

const (
	DarkModeUnset DarkMode = iota
	DarkModeOff
	DarkModeOn
	DarkModeSystem
)

// darkModeFrom reads the darkMode setting ("0", "1" or "2").
func darkModeFrom(settings document.Document) DarkMode {
	switch settings.String("darkMode") {
	case "0":
		return DarkModeOff
	case "1":
		return DarkModeOn
	case "2":
		return DarkModeSystem
	default:
		return DarkModeUnset
	}
}
