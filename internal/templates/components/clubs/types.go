package clubs

import "github.com/a-h/templ"

type Entry struct {
	Name string
	Slug string
}

func (e Entry) URL() templ.SafeURL {
	return templ.URL("/clubs/" + e.Slug)
}
