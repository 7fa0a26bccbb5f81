package provider

import "github.com/tidwall/gjson"

// artifactPaths is the ordered list of extraction rules applied to a
// terminal status payload. Providers name the artifact field inconsistently;
// the first rule that yields a non-empty string wins. Entries reference the
// first element of the "generated" assets list before falling back to
// top-level fields; "generated.0" handles the case where the element itself
// is a plain URL string.
var artifactPaths = []string{
	"generated.0.url",
	"generated.0.image_url",
	"generated.0.imageUrl",
	"generated.0.src",
	"generated.0",
	"url",
	"image_url",
}

// extractArtifact resolves the artifact URL from a terminal status payload,
// or "" when the payload carries none.
func extractArtifact(payload gjson.Result) string {
	for _, path := range artifactPaths {
		v := payload.Get(path)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
