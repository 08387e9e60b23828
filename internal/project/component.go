package project

import _ "embed"

// DashboardComponent is the static page component written as index.<ext>
// beside every definition.json.
//
//go:embed templates/dashboard.js
var DashboardComponent []byte
