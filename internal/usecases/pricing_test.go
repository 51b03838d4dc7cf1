package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eximbot/internal/entities"
)

func TestPriceWAAvailableWinsOverFullContact(t *testing.T) {
	c := entities.DisplayContact{
		WAAvailable: true,
		Contact:     "+62 812 3456 7890",
		Email:       "sales@acme.example",
		Website:     "www.acme.example",
	}
	assert.Equal(t, PriceWAAvailable, Price(c))
}

func TestPriceFullContactTriple(t *testing.T) {
	c := entities.DisplayContact{
		Contact: "+62 812 3456 7890",
		Email:   "sales@acme.example",
		Website: "www.acme.example",
	}
	assert.Equal(t, PriceFullContact, Price(c))
}

func TestPriceBaseWhenAnyFieldMissing(t *testing.T) {
	cases := []entities.DisplayContact{
		{Contact: "+62 812", Email: "a@b.c"},
		{Contact: "+62 812", Website: "www.a.c"},
		{Email: "a@b.c", Website: "www.a.c"},
		{},
	}
	for _, c := range cases {
		assert.Equal(t, PriceBase, Price(c))
	}
}

func TestPriceRungsNeverBelowFloor(t *testing.T) {
	for _, p := range []float64{PriceWAAvailable, PriceFullContact, PriceBase} {
		assert.GreaterOrEqual(t, p, MinUnlockPrice)
	}
}
