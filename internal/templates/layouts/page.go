package layouts

import "github.com/codr1/Courtside/internal/models"

// Page describes the chrome around a server-rendered page.
type Page struct {
	Title    string
	ClubName string
	ClubSlug string
	Branding models.Branding
}

func (p Page) documentTitle() string {
	switch {
	case p.Title != "" && p.ClubName != "":
		return p.Title + " | " + p.ClubName
	case p.ClubName != "":
		return p.ClubName
	case p.Title != "":
		return p.Title
	default:
		return "Courtside"
	}
}
