package assets

import _ "embed"

// ZonesYAML is the bundled timezone catalog: canonical IANA names with the
// aliases, country and main cities users search by.
//
//go:embed zones.yaml
var ZonesYAML []byte
