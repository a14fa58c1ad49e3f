package lifecycle

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// CuratedFields is the administrator-authored projection of a request shown
// on public listings.
type CuratedFields struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description,omitempty"`
	PrimaryImage string   `json:"primaryImage"`
	Gallery      []string `json:"gallery,omitempty"`
	Urgent       bool     `json:"urgent"`
	Location     string   `json:"location,omitempty"`
}

// Missing returns the json names of display fields that are blank.
func (c CuratedFields) Missing() []string {
	missing := make([]string, 0)
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(c.PrimaryImage) == "" {
		missing = append(missing, "primaryImage")
	}

	return missing
}

func (c CuratedFields) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CuratedFields) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = CuratedFields{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}

	return errors.New("curated fields: unsupported column type")
}
