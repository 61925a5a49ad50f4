// Package web holds the embedded control page served at the gateway root.
package web

import _ "embed"

//go:embed index.html
var Index []byte
