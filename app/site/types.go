package site

import "cmp"

const DefaultRefresh = 300 // seconds

// Spec is a fully resolved site configuration. The generator never applies
// defaults, so Registry fills Refresh and Alias before a Spec is handed out.
type Spec struct {
	URL     string   `yaml:"url"`
	Refresh int      `yaml:"refresh"` // seconds
	Alias   string   `yaml:"alias"`
	Items   ItemSpec `yaml:"items"`

	File string `yaml:"-"` // source configuration file
}

// ItemSpec holds one location path per item field.
type ItemSpec struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	URL         string         `yaml:"url"`
	PubDate     string         `yaml:"pub_date"`
	GUID        string         `yaml:"guid"`
	Enclosure   *EnclosureSpec `yaml:"enclosure"`
}

type EnclosureSpec struct {
	URL    string `yaml:"url"`
	Length string `yaml:"length"`
	Type   string `yaml:"type"`
}

func (s Spec) Name() string {
	return cmp.Or(s.Alias, s.URL)
}

// Declarative reports whether enclosure length and type come from the page
// itself rather than from probe requests.
func (e *EnclosureSpec) Declarative() bool {
	return e.Length != "" && e.Type != ""
}
