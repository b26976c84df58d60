package fetch

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// DetectFormat returns explicit when set, otherwise the format implied by
// the extension of the URL path.
func DetectFormat(rawURL string, explicit tripload.Format) (tripload.Format, error) {
	switch explicit {
	case tripload.FormatParquet, tripload.FormatCSV:
		return explicit, nil
	case tripload.FormatAuto:
	default:
		return "", fmt.Errorf("%w: unknown format %q", tripload.ErrDecodeFailed, explicit)
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".parquet", ".pq":
		return tripload.FormatParquet, nil
	case ".csv":
		return tripload.FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %s; set the format explicitly", tripload.ErrDecodeFailed, rawURL)
	}
}
