package service

import (
	"fmt"
	"html"
	"net/url"
)

// ShareLinks is what an admin copies to distribute a survey
type ShareLinks struct {
	URL       string `json:"url"`
	EmbedCode string `json:"embedCode"`
}

// BuildShareLinks returns the public link of a survey and its iframe snippet
func BuildShareLinks(publicBaseURL, surveyID string) ShareLinks {
	link := fmt.Sprintf("%s/survey?id=%s", publicBaseURL, url.QueryEscape(surveyID))
	return ShareLinks{
		URL:       link,
		EmbedCode: fmt.Sprintf(`<iframe src="%s" width="100%%" height="600px" frameborder="0"></iframe>`, html.EscapeString(link)),
	}
}
