/*
Copyright © 2019 the xsection authors.
This file is part of xsection.

xsection is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

xsection is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with xsection.  If not, see <http://www.gnu.org/licenses/>.
*/


package xsectionutil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

const address = "localhost:7171"

// configHandler loads the configuration file given by the "file" query
// parameter and responds with the resulting option values as JSON.
func configHandler(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		http.Error(w, "missing file parameter", http.StatusBadRequest)
		return
	}
	Cfg.Set("config", file)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	values := make(map[string]interface{}, len(options))
	for _, option := range options {
		values[option.name] = Cfg.Get(option.name)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(values); err != nil {
		logrus.WithError(err).Error("writing configuration response")
	}
}

// page lays out the command forms generated by gobra. Editing the config
// field reloads the other fields from the named file.
var page = template.Must(template.New("xsection").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>xsection</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 1em auto; }
input { font-family: monospace; width: 60%; }
input.bad { background: #fdd; }
</style>
</head>
<body>
<h1>xsection</h1>
{{.}}
<script>
const fields = [...document.querySelectorAll("[data-name]")];
const cfg = fields.find(f => f.dataset.name === "config").children[0];
cfg.addEventListener("change", async () => {
	const res = await fetch("/config?file=" + encodeURIComponent(cfg.value));
	cfg.classList.toggle("bad", !res.ok);
	if (!res.ok) return;
	const values = await res.json();
	for (const f of fields) {
		if (f.dataset.name in values) {
			f.children[0].value = values[f.dataset.name];
		}
	}
});
</script>
</body>
</html>`))

// StartWebServer serves a form for each command at address and opens it
// in the default browser.
func StartWebServer() {
	if err := setConfig(); err != nil {
		logrus.WithError(err).Warn("reading configuration")
	}
	http.HandleFunc("/config", configHandler)

	for _, cmd := range []*cobra.Command{Root, versionCmd, pointsCmd, structureCmd,
		boreholesCmd, intersectCmd, profileCmd, segmentsCmd, to3dCmd, fenceCmd,
		rescaleCmd, xy2shapeCmd, batchCmd} {
		cmd.SilenceUsage = true
	}

	server := gobra.Server{Root: Root, ServerAddress: address, HTML: page}
	url := "http://" + address
	logrus.WithField("address", url).Info("starting web interface")
	if err := open.Run(url); err != nil {
		fmt.Println("open " + url + " in a browser to use xsection")
	}
	server.Start()
}
