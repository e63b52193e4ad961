package resources

import "embed"

//go:embed migrations policy.yaml
var FS embed.FS
