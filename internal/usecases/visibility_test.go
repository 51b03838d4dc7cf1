package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eximbot/internal/entities"
)

func TestRedactKeepsPrefixes(t *testing.T) {
	c := entities.DisplayContact{
		Name:    "PT Samudra Jaya Abadi",
		Email:   "purchasing@samudra.example",
		Contact: "+62 812 3456 7890",
		Website: "www.samudra.example",
	}

	got := Redact(c)

	assert.Equal(t, "PT SamXXXXXX", got.Name)
	assert.Equal(t, "purchaXXXXXX", got.Email)
	assert.Equal(t, "+62 81XXXXXX", got.Contact)
	assert.Equal(t, "www.XXXXXX", got.Website)
}

func TestRedactShortNameUnchanged(t *testing.T) {
	got := Redact(entities.DisplayContact{Name: "ACM"})
	assert.Equal(t, "ACM", got.Name)
}

func TestRedactEmptyFieldsStayEmpty(t *testing.T) {
	got := Redact(entities.DisplayContact{Name: "Acme Trading"})
	assert.Equal(t, "", got.Email)
	assert.Equal(t, "", got.Contact)
	assert.Equal(t, "", got.Website)
}

func TestRedactPhoneWithoutPlus(t *testing.T) {
	got := Redact(entities.DisplayContact{Name: "Acme Trading", Contact: "0812345678"})
	assert.Equal(t, "+1 65XXXXXX", got.Contact)
}

func TestRedactPhoneWithoutSpacesStaysMasked(t *testing.T) {
	got := Redact(entities.DisplayContact{Name: "Acme Trading", Contact: "+628123456789"})

	assert.Equal(t, "+628 12XXXXXX", got.Contact)
	assert.NotContains(t, got.Contact, "3456789")
}

func TestRedactPhoneCountryGroupAndTwoDigits(t *testing.T) {
	got := Redact(entities.DisplayContact{Name: "Acme Trading", Contact: "+81 90-1234-5678"})
	assert.Equal(t, "+81 90XXXXXX", got.Contact)
}

func TestProjectSavedPassesThrough(t *testing.T) {
	c := entities.DisplayContact{
		Name:    "PT Samudra Jaya Abadi",
		Email:   "purchasing@samudra.example",
		Contact: "+62 812 3456 7890",
		Website: "www.samudra.example",
	}

	view := Project(c, true)

	assert.True(t, view.Saved)
	assert.Equal(t, c, view.DisplayContact)
}

func TestProjectTierPricedBeforeRedaction(t *testing.T) {
	c := entities.DisplayContact{
		Name:    "PT Samudra Jaya Abadi",
		Email:   "purchasing@samudra.example",
		Contact: "+62 812 3456 7890",
		Website: "www.samudra.example",
	}

	view := Project(c, false)

	assert.False(t, view.Saved)
	assert.Equal(t, PriceFullContact, view.Tier)
	assert.NotEqual(t, c.Email, view.Email)
}
