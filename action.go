package tasklink

import _ "embed"

// ActionMetadata is the GitHub Action metadata file, it declares every input.
//
//go:embed action.yml
var ActionMetadata []byte
