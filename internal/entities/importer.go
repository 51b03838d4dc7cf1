package entities

import "time"

// Importer is a row of the foreign-trade contact catalog. Contact fields may
// be empty when the bulk file had no value for them.
type Importer struct {
	ID             int
	Name           string
	Role           string
	Product        string
	Country        string
	Phone          string
	Website        string
	Email1         string
	Email2         string
	LastContact    string
	Status         string
	WAAvailability string
	CreatedAt      time.Time
}

// DisplayContact is the flattened projection of an Importer used by search
// results and the unlock flow: phone becomes Contact, email_1 becomes Email,
// product carries the HS code and role the product description.
type DisplayContact struct {
	ID                 int
	Name               string
	Country            string
	Contact            string
	Email              string
	Website            string
	WAAvailable        bool
	HSCode             string
	ProductDescription string
	ContactScore       int
	RelevanceScore     int
}

func (i Importer) ToDisplay() DisplayContact {
	return DisplayContact{
		ID:                 i.ID,
		Name:               i.Name,
		Country:            i.Country,
		Contact:            i.Phone,
		Email:              i.Email1,
		Website:            i.Website,
		WAAvailable:        i.WAAvailability == "Available",
		HSCode:             i.Product,
		ProductDescription: i.Role,
	}
}

// HasContactMethod reports whether the row qualifies for search results:
// at least one of phone, email_1, website must be present.
func (i Importer) HasContactMethod() bool {
	return i.Phone != "" || i.Email1 != "" || i.Website != ""
}
