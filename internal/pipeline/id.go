// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-digest/internal/pdftext"
)

// DeriveID builds the stable record ID for a paper. The title is
// normalized to printable ASCII with collapsed whitespace, spaces become
// underscores, and the provenance fields are appended. The same inputs
// always yield the same ID across runs; it is the dedup and resume key.
// Distinct titles that normalize to the same string collide, which is
// accepted: such listings are near-duplicates of each other anyway.
func DeriveID(title, conference string, year int, track, submissionType, platform string) (id, cleanTitle string) {
	cleanTitle = pdftext.CleanText(title)
	id = strings.ReplaceAll(cleanTitle, " ", "_") +
		fmt.Sprintf("_%s_%d_%s_%s_%s", conference, year, track, submissionType, platform)
	return id, cleanTitle
}
