package acquire

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var reTreeOrBlob = regexp.MustCompile(`/(tree|blob)/[^/]+.*$`)

// NormalizeRepoURL turns browser URLs into cloneable ones: /tree/... and
// /blob/... suffixes are dropped and a .git suffix is added when missing.
func NormalizeRepoURL(url string) string {
	url = reTreeOrBlob.ReplaceAllString(url, "")
	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}
	return url
}

// IsRemote reports whether a repo path is an HTTP(S) URL rather than a
// local directory.
func IsRemote(repoPath string) bool {
	return strings.HasPrefix(repoPath, "http://") || strings.HasPrefix(repoPath, "https://")
}

// Clone makes a shallow single-branch clone of url into dest. When the
// requested ref does not exist the clone is retried against the remote's
// default branch, matching how users paste branch URLs that are stale.
func Clone(ctx context.Context, url, ref, dest string) error {
	url = NormalizeRepoURL(url)

	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	}
	if ref != "" && ref != "HEAD" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
		if _, err := git.PlainCloneContext(ctx, dest, false, opts); err == nil {
			return nil
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
		// Branch may not exist; fall back to the default branch. The failed
		// attempt can leave a partial checkout behind, so clear it first.
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("acquire: reset clone dir: %w", err)
		}
		opts.ReferenceName = ""
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return fmt.Errorf("acquire: clone %s: %w", url, err)
	}
	return nil
}
