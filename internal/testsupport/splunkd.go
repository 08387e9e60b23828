package testsupport

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeSplunkd serves the subset of the splunkd REST API dashpub reads: server
// info, views and the Dashboard Studio KV store image collections.
type FakeSplunkd struct {
	*httptest.Server

	token string

	mu       sync.Mutex
	views    map[string]fakeView
	kvstore  map[string]string
	requests []string
}

type fakeView struct {
	label      string
	definition string
}

// NewFakeSplunkd starts a server that accepts the bearer token. It is closed
// on test cleanup.
func NewFakeSplunkd(t testing.TB, token string) *FakeSplunkd {
	t.Helper()

	f := &FakeSplunkd{
		token:   token,
		views:   make(map[string]fakeView),
		kvstore: make(map[string]string),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// AddView registers a Dashboard Studio view under app/name.
func (f *FakeSplunkd) AddView(app, name, label, definition string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[app+"/"+name] = fakeView{label: label, definition: definition}
}

// AddKVStoreImage stores data as a data URI in the namespace's
// splunk-dashboard-<category> collection.
func (f *FakeSplunkd) AddKVStoreImage(namespace, category, id, contentType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := namespace + "/splunk-dashboard-" + category + "/" + id
	f.kvstore[key] = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Requests returns the request paths served so far.
func (f *FakeSplunkd) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FakeSplunkd) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		writeMessages(w, http.StatusUnauthorized, "call not properly authenticated")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "services" && parts[1] == "server" && parts[2] == "info":
		writeJSON(w, http.StatusOK, map[string]any{
			"entry": []any{map[string]any{"content": map[string]any{"serverName": "fake", "version": "9.2.0"}}},
		})
	case len(parts) == 7 && parts[0] == "servicesNS" && parts[3] == "data" && parts[4] == "ui" && parts[5] == "views":
		f.serveView(w, parts[2], parts[6])
	case len(parts) == 8 && parts[0] == "servicesNS" && parts[3] == "storage" && parts[4] == "collections" && parts[5] == "data":
		f.serveKVStore(w, parts[2]+"/"+parts[6]+"/"+parts[7])
	default:
		writeMessages(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (f *FakeSplunkd) serveView(w http.ResponseWriter, app, name string) {
	f.mu.Lock()
	view, ok := f.views[app+"/"+name]
	f.mu.Unlock()
	if !ok {
		writeMessages(w, http.StatusNotFound, fmt.Sprintf("Could not find object id=%s", name))
		return
	}

	data := fmt.Sprintf("<dashboard version=\"2\">\n  <label>%s</label>\n  <definition><![CDATA[%s]]></definition>\n</dashboard>", view.label, view.definition)
	payload := map[string]any{
		"entry": []any{map[string]any{
			"name":    name,
			"content": map[string]any{"eai:data": data, "label": view.label},
		}},
	}
	writeJSON(w, http.StatusOK, payload)
}

func (f *FakeSplunkd) serveKVStore(w http.ResponseWriter, key string) {
	f.mu.Lock()
	uri, ok := f.kvstore[key]
	f.mu.Unlock()
	if !ok {
		writeMessages(w, http.StatusNotFound, "Could not find object.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dataURI": uri})
}

func writeMessages(w http.ResponseWriter, status int, text string) {
	writeJSON(w, status, map[string]any{
		"messages": []any{map[string]any{"type": "ERROR", "text": text}},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
