package types

// AppSettings holds the application-wide help and about text shown at the
// main menu.
type AppSettings struct {
	Help  string `json:"help,omitempty" yaml:"help,omitempty"`
	About string `json:"about,omitempty" yaml:"about,omitempty"`
}
