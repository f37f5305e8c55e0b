package shapefile

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// sidecarElement is a generic XML element node used to walk the granule's
// metadata sidecar without committing to one fixed schema — provider
// sidecar layouts vary by collection, so the version field is located by
// name rather than by a hardcoded path.
type sidecarElement struct {
	XMLName  xml.Name
	Content  string           `xml:",chardata"`
	Children []sidecarElement `xml:",any"`
}

// referenceDBVersion walks sidecar and returns the text content of the
// first element whose tag name contains "version" (case-insensitive).
func referenceDBVersion(sidecarXML []byte) (string, error) {
	var root sidecarElement
	if err := xml.Unmarshal(sidecarXML, &root); err != nil {
		return "", fmt.Errorf("decoding xml sidecar: %w", err)
	}

	version, ok := findVersion(root)
	if !ok {
		return "", fmt.Errorf("xml sidecar: no version-like element found")
	}
	return strings.TrimSpace(version), nil
}

func findVersion(el sidecarElement) (string, bool) {
	if strings.Contains(strings.ToLower(el.XMLName.Local), "version") && strings.TrimSpace(el.Content) != "" {
		return el.Content, true
	}
	for _, child := range el.Children {
		if v, ok := findVersion(child); ok {
			return v, true
		}
	}
	return "", false
}
