package shared

// Breadcrumb represents a navigation trail entry. An empty URL marks the
// current page.
type Breadcrumb struct {
	Title string
	URL   string
}

// Trail starts every breadcrumb list at Home
func Trail(items ...Breadcrumb) []Breadcrumb {
	return append([]Breadcrumb{{Title: "Home", URL: "/"}}, items...)
}
