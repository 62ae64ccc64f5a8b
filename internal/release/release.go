// Package release looks up the latest published dashboard build.
package release

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// LatestURL is the release feed consulted by the TUI and `intellidetect version --check`.
const LatestURL = "https://api.github.com/repos/intellidetect/dashboard/releases/latest"

const checkTimeout = 5 * time.Second

// Latest fetches the newest release tag from url, without the leading "v".
func Latest(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("release.Latest: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("release.Latest: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release.Latest: release feed returned %s", resp.Status)
	}

	var rel struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", fmt.Errorf("release.Latest: decode: %w", err)
	}
	if rel.TagName == "" {
		return "", fmt.Errorf("release.Latest: empty tag")
	}
	return strings.TrimPrefix(rel.TagName, "v"), nil
}

// IsNewer returns true if latest is a newer semver than current.
func IsNewer(latest, current string) bool {
	lMaj, lMin, lPatch := parse(latest)
	cMaj, cMin, cPatch := parse(current)
	if lMaj != cMaj {
		return lMaj > cMaj
	}
	if lMin != cMin {
		return lMin > cMin
	}
	return lPatch > cPatch
}

// Checkable reports whether version is a release build worth comparing.
func Checkable(version string) bool {
	return version != "" && version != "dev"
}

func parse(v string) (int, int, int) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.SplitN(v, ".", 3)
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s) //nolint:errcheck // zero-value on parse failure is desired
		return n
	}
	var maj, min, patch int
	if len(parts) > 0 {
		maj = atoi(parts[0])
	}
	if len(parts) > 1 {
		min = atoi(parts[1])
	}
	if len(parts) > 2 {
		patch = atoi(parts[2])
	}
	return maj, min, patch
}
