// Package sociallinks renders the configurable outbound links shown under
// the feedback form.
package sociallinks

import (
	"bytes"
	"html/template"
)

// Link describes one outbound entry displayed in the footer.
type Link struct {
	Label string
	URL   string
}

// Config captures the markup hooks required to render the link list.
type Config struct {
	ElementID string
	BaseClass string
	ItemClass string
	Links     []Link
}

var footerTemplate = template.Must(template.New("sociallinks").Parse(`<div id="{{.ElementID}}" class="{{.BaseClass}}">
  {{range .Links}}
  <a class="{{$.ItemClass}}" href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Label}}</a>
  {{end}}
</div>`))

// Render returns the footer HTML for the provided configuration. Entries
// with an empty URL are skipped.
func Render(config Config) (template.HTML, error) {
	visibleLinks := make([]Link, 0, len(config.Links))
	for _, link := range config.Links {
		if link.URL == "" {
			continue
		}
		visibleLinks = append(visibleLinks, link)
	}
	config.Links = visibleLinks

	var buffer bytes.Buffer
	if err := footerTemplate.Execute(&buffer, config); err != nil {
		return "", err
	}
	return template.HTML(buffer.String()), nil
}
