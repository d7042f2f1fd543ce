package command

// ViewKind tells a transport which help layout to draw.
type ViewKind int

const (
	ViewIndex ViewKind = iota
	ViewDetailKind
)

// View is a derived help presentation. It is rebuilt from the Registry on every
// request and never stored.
type View struct {
	Kind     ViewKind
	MenuID   string
	Title    string
	Notice   string
	Sections []ViewSection
	Detail   *ViewDetail
	Options  []ViewOption
	Labels   ViewLabels
}

// ViewLabels are the localized captions a transport needs to draw a view.
type ViewLabels struct {
	Usage       string
	Aliases     string
	Category    string
	Placeholder string
}

// ViewSection is one category of the index view.
type ViewSection struct {
	Category string
	Entries  []ViewEntry
}

// ViewEntry is one command line of an index section.
type ViewEntry struct {
	Name        string
	Description string
}

// ViewDetail describes a single command.
type ViewDetail struct {
	Name        string
	Aliases     []string
	Category    string
	Usage       string
	Description string
}

// ViewOption is one entry of the selection control attached to a view.
type ViewOption struct {
	Label       string
	Value       string
	Description string
	Default     bool
}
