package models

// CardRecord is a catalog entry fetched from the upstream card API. It is
// immutable once fetched and cached wholesale per set, so it is a plain JSON
// value object rather than a database table.
type CardRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Supertype string     `json:"supertype,omitempty"`
	Subtypes  []string   `json:"subtypes,omitempty"`
	HP        string     `json:"hp,omitempty"`
	Types     []string   `json:"types,omitempty"`
	Rarity    string     `json:"rarity,omitempty"`
	Number    string     `json:"number,omitempty"`
	Images    CardImages `json:"images"`
	Set       CardSetRef `json:"set"`
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

type CardSetRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ImageURI prefers the large rendition, falling back to the small one.
func (c *CardRecord) ImageURI() string {
	if c.Images.Large != "" {
		return c.Images.Large
	}
	return c.Images.Small
}
