package model

// Task is one unit of work for the downloader: fetch SourceURL into Path.
type Task struct {
	SourceURL string
	Path      string
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return t.SourceURL + " -> " + t.Path
}
