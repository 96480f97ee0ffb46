package guard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/crimp-io/crimp/errs"
)

// SanitizePath strips control characters from p, rejects traversal
// sequences (`..`, `~`, and their percent-encoded spellings), then
// percent-decodes once and re-validates the decoded form so a single
// round of encoding cannot smuggle an escape through.
func SanitizePath(p string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, p)

	if err := checkTraversal(cleaned); err != nil {
		return "", err
	}

	decoded, err := url.PathUnescape(cleaned)
	if err != nil {
		return "", errs.Wrap(errs.ErrPathTraversal, "sanitize",
			fmt.Errorf("undecodable percent sequence: %w", err))
	}
	if err := checkTraversal(decoded); err != nil {
		return "", err
	}

	return cleaned, nil
}

func checkTraversal(p string) error {
	lower := strings.ToLower(p)
	for _, seq := range []string{"..", "~", "%2e%2e", "%2e.", ".%2e", "%7e"} {
		if strings.Contains(lower, seq) {
			return errs.Wrap(errs.ErrPathTraversal, "sanitize",
				fmt.Errorf("path contains %q", seq))
		}
	}

	return nil
}
