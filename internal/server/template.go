package server

import (
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/lethe-board/lethe/internal/model"
)

type listingData struct {
	Memories    []model.Memory
	Flashes     []string
	Privileged  bool
	Placeholder string
}

var listingTmpl = template.Must(template.New("listing").Funcs(template.FuncMap{
	"numberlinks": numberLinks,
	"datauri":     thumbnailDataURI,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>lethe</title>
</head>
<body>
{{range .Flashes}}<p class="flash">{{.}}</p>
{{end}}<ul id="memories">
{{range .Memories}}<li id="{{.ID}}">
{{if .Thumbnail}}<a href="{{.Text}}"><img src="{{datauri .Thumbnail}}" alt="{{.Text}}"></a>
{{else}}<p>{{numberlinks .Text}}</p>
{{end}}{{if $.Privileged}}<form method="post" action="/forget"><input type="hidden" name="id" value="{{.ID}}"><button>forget</button></form>
{{end}}</li>
{{end}}</ul>
<form method="post" action="/new_memory">
<input type="text" name="text" placeholder="{{.Placeholder}}" autofocus>
</form>
</body>
</html>
`))

// thumbnailDataURI builds an inline image source from a base64 JPEG
// thumbnail. Marked safe so the base64 payload is not URL-escaped.
func thumbnailDataURI(thumb *string) template.URL {
	if thumb == nil {
		return ""
	}
	return template.URL("data:image/jpeg;base64," + *thumb)
}

// numberRefs matches #123-style references; a leading & marks an HTML
// entity that must be left alone.
var numberRefs = regexp.MustCompile(`&?#\d+`)

// numberLinks escapes text and turns #123 references into anchors to the
// memory with that id.
func numberLinks(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	linked := numberRefs.ReplaceAllStringFunc(escaped, func(m string) string {
		if strings.HasPrefix(m, "&") {
			return m
		}
		return `<a href="` + m + `">` + m + `</a>`
	})
	return template.HTML(linked)
}

func (s *Server) renderListing(w http.ResponseWriter, data listingData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTmpl.Execute(w, data); err != nil {
		s.log.Error("render listing", zap.Error(err))
	}
}
