// Package page renders the client-side mirror page and serves its assets.
package page

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Data is the per-request input to the page template.
type Data struct {
	Nonce           string
	Scary           bool
	BuildVersion    string
	WebRTCTimeoutMS int
	STUNServersJSON string
}

type Renderer struct {
	tmpl         *template.Template
	buildVersion string
	webrtcMS     int
	stunJSON     string
}

func NewRenderer(buildVersion string, webrtcTimeoutMS int, stunServers []string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse page template")
	}
	if stunServers == nil {
		stunServers = []string{}
	}
	stun, err := json.Marshal(stunServers)
	if err != nil {
		return nil, errors.Wrap(err, "encode stun servers")
	}
	return &Renderer{
		tmpl:         tmpl,
		buildVersion: buildVersion,
		webrtcMS:     webrtcTimeoutMS,
		stunJSON:     string(stun),
	}, nil
}

// Render writes the page. The template is executed into a buffer first so a
// failure never leaves a half-written response.
func (p *Renderer) Render(w io.Writer, nonce string, scary bool) error {
	var buf bytes.Buffer
	err := p.tmpl.ExecuteTemplate(&buf, "index.html", Data{
		Nonce:           nonce,
		Scary:           scary,
		BuildVersion:    p.buildVersion,
		WebRTCTimeoutMS: p.webrtcMS,
		STUNServersJSON: p.stunJSON,
	})
	if err != nil {
		return errors.Wrap(err, "execute page template")
	}
	_, err = buf.WriteTo(w)
	return err
}

// Static serves the embedded assets rooted at static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded at build time; Sub only fails on an invalid path.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Asset returns the raw contents of an embedded static file.
func Asset(name string) ([]byte, error) {
	return staticFS.ReadFile("static/" + name)
}
