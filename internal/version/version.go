package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const timeout = 10 * time.Second

// releasesURL is overridden in tests.
var releasesURL = "https://api.github.com/repos/DataRockMyWorld/workshopctl/releases"

type Release struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Latest returns the newest published vX.Y.Z release tag.
func Latest(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch releases: unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read releases: %w", err)
	}
	var releases []Release
	if err := sonic.Unmarshal(body, &releases); err != nil {
		return "", fmt.Errorf("decode releases: %w", err)
	}

	var tags []string
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		if _, err := parse(r.TagName); err == nil {
			tags = append(tags, r.TagName)
		}
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("no releases found")
	}
	sort.Slice(tags, func(i, j int) bool { return Compare(tags[i], tags[j]) > 0 })
	return tags[0], nil
}

func parse(v string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) != 3 {
		return out, fmt.Errorf("invalid version format: %s", v)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, fmt.Errorf("invalid version component %q in %s", p, v)
		}
		out[i] = n
	}
	return out, nil
}

// Compare returns -1, 0 or 1 as a is older than, equal to or newer than b. Unparseable
// versions compare as strings.
func Compare(a, b string) int {
	pa, errA := parse(a)
	pb, errB := parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(strings.TrimPrefix(a, "v"), strings.TrimPrefix(b, "v"))
	}
	for i := range pa {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	return 0
}

// UpdateAvailable reports the newer release, if any. Development builds never update.
func UpdateAvailable(ctx context.Context, current string) (bool, string, error) {
	if current == "" || current == "dev" {
		return false, "", nil
	}
	latest, err := Latest(ctx)
	if err != nil {
		return false, "", err
	}
	if Compare(current, latest) < 0 {
		return true, latest, nil
	}
	return false, "", nil
}
