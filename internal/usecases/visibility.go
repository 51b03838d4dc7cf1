package usecases

import (
	"strings"
	"unicode"

	"eximbot/internal/entities"
)

const redactMask = "XXXXXX"

// ContactView is what the chat layer renders: the (possibly redacted)
// contact plus the unlock price as a UI hint.
type ContactView struct {
	entities.DisplayContact
	Saved bool
	Tier  float64
}

// Project produces the display form of a contact. Saved contacts pass
// through verbatim; everything else is redacted. The tier is always priced
// on the unredacted fields.
func Project(c entities.DisplayContact, saved bool) ContactView {
	view := ContactView{DisplayContact: c, Saved: saved, Tier: Price(c)}
	if !saved {
		view.DisplayContact = Redact(c)
	}
	return view
}

// Redact replaces contact detail with deterministic, length-preserving-enough
// placeholders. Empty fields stay empty so the UI does not fake data that was
// never there.
func Redact(c entities.DisplayContact) entities.DisplayContact {
	c.Name = redactName(c.Name)
	c.Email = redactPrefix(c.Email)
	c.Contact = redactPhone(c.Contact)
	if c.Website != "" {
		c.Website = "www." + redactMask
	}
	return c
}

// redactName keeps the first 6 characters; names of up to 3 characters stay
// unchanged.
func redactName(name string) string {
	runes := []rune(name)
	if len(runes) <= 3 {
		return name
	}
	if len(runes) > 6 {
		runes = runes[:6]
	}
	return string(runes) + redactMask
}

// redactPrefix keeps the first 6 characters of an email.
func redactPrefix(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) > 6 {
		runes = runes[:6]
	}
	return string(runes) + redactMask
}

// redactPhone keeps the country-code group plus two digits for international
// numbers; anything else collapses to a fixed placeholder prefix.
func redactPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if !strings.Contains(phone, "+") {
		return "+1 65" + redactMask
	}

	groups := strings.Fields(phone)
	prefix := groups[0]
	rest := strings.Join(groups[1:], "")

	// Numbers written without spaces collapse into a single group; keep
	// only a country-code-sized prefix so the rest stays masked.
	if runes := []rune(prefix); len(runes) > 4 {
		prefix = string(runes[:4])
		rest = string(runes[4:]) + rest
	}
	digits := make([]rune, 0, 2)
	for _, r := range rest {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
			if len(digits) == 2 {
				break
			}
		}
	}

	return prefix + " " + string(digits) + redactMask
}
