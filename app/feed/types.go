package feed

// Item field names, used as record set keys and in diagnostics.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldURL         = "url"
	FieldPubDate     = "pub_date"
	FieldGUID        = "guid"
	FieldEnclosure   = "enclosure"
)

type Channel struct {
	Title    string
	URL      string
	Language string // empty when the page does not declare one
	Items    []Item
}

type Item struct {
	Title       string
	Description string
	URL         string
	PubDate     string // as extracted, empty when not configured
	GUID        string
	Enclosure   *Enclosure
}

// Enclosure holds attachment metadata exactly as extracted or probed.
// Length and Type are empty when unknown.
type Enclosure struct {
	URL    string
	Length string
	Type   string
}

// RecordSet is the per-field output of one extraction pass. Every sequence
// must have the same length; value i of each field belongs to record i.
type RecordSet struct {
	Fields        map[string][]string
	Enclosures    []Enclosure
	HasEnclosures bool
}

type Record struct {
	Fields    map[string]string
	Enclosure *Enclosure
}
