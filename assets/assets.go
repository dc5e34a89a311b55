package assets

import "embed"

const BrandingPath = "branding"

//go:embed branding
var BrandingFS embed.FS
