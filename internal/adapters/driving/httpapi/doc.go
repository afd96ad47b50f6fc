// Package httpapi serves the habit logging API consumed by the web app.
//
// Routes live under /api. JSON endpoints answer with a body of the form
// {"error": message} on failure; the OAuth endpoints always redirect back
// to the frontend settings page instead.
package httpapi
