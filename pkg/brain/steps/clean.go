package steps

import (
	"regexp"
	"strings"
)

var (
	stepNumberPrefix = regexp.MustCompile(`^\d+\.\s*`)
	trailingOrdinal  = regexp.MustCompile(`\s*\(\d+\)\s*$`)
)

// actionVerbs are stripped from the front of a raw tab label, longest
// phrase first so "Click on" is removed before "Click" gets a chance.
// Only the first matching verb is removed.
var actionVerbs = []string{
	"Navigate to", "navigate to",
	"Go to", "go to",
	"Click on", "click on",
	"Then click", "then click",
	"Click", "click",
	"Select", "select",
	"Open", "open",
	"Choose", "choose",
}

// processSuffixes are generic trailers dropped from process names.
// "Training Material" must precede "Training": only one suffix is
// stripped, and the most specific one should win.
var processSuffixes = []string{
	"Training Material",
	"Training",
	"Process",
	"SOP",
	"Procedure",
}

// CleanTabName normalizes a raw tab label lifted from slide text:
// newlines become spaces, runs of whitespace collapse, one leading
// "N." step number goes, one leading action verb goes, and one
// trailing "(N)" ordinal goes.
//
//	"3. Click on\nLogin" → "Login"
//	"Go to RTO(1)"       → "RTO"
func CleanTabName(raw string) string {
	if raw == "" {
		return ""
	}

	tab := strings.ReplaceAll(raw, "\n", " ")
	tab = strings.ReplaceAll(tab, "\r", " ")
	tab = strings.Join(strings.Fields(tab), " ")

	tab = stepNumberPrefix.ReplaceAllString(tab, "")

	for _, verb := range actionVerbs {
		if strings.HasPrefix(tab, verb) {
			tab = strings.TrimSpace(tab[len(verb):])
			break
		}
	}

	tab = trailingOrdinal.ReplaceAllString(tab, "")

	return strings.TrimSpace(tab)
}

// CleanProcessName normalizes a segment title into a process name:
// whitespace collapses and at most one generic suffix is removed.
//
//	"Order Consumables\nTraining Material" → "Order Consumables"
func CleanProcessName(title string) string {
	name := strings.ReplaceAll(title, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.Join(strings.Fields(name), " ")

	for _, suffix := range processSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)])
			break
		}
	}

	return name
}
