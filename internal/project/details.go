package project

import (
	"hash/fnv"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Details is the display metadata derived for a new project.
type Details struct {
	Name  string
	Icon  string
	Color string
}

const demoHost = "demo.getodk.org"

var palette = []string{
	"#3e9fcc", "#c04f9d", "#4d9a3f", "#d96b26",
	"#7b5fc9", "#2f8f86", "#c2403c", "#8a6d3b",
}

// DetailsCreator derives display metadata from a server URL.
type DetailsCreator struct{}

// NewDetailsCreator returns a DetailsCreator.
func NewDetailsCreator() *DetailsCreator { return &DetailsCreator{} }

// FromServerURL names the project after the URL host.
func (c *DetailsCreator) FromServerURL(serverURL string) Details {
	name := hostOf(serverURL)
	if name == demoHost {
		name = "Demo project"
	}
	if name == "" {
		name = "Project"
	}
	return Details{
		Name:  name,
		Icon:  iconFor(name),
		Color: colorFor(serverURL),
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}

func iconFor(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func colorFor(serverURL string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(serverURL))
	return palette[h.Sum32()%uint32(len(palette))]
}
