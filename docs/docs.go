// Package docs embeds the OpenAPI document served under /swagger.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
