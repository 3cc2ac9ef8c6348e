// Package ignore resolves ignore-file exclusion rules for a directory tree.
//
// Rules are gathered from global excludes, the repository's
// .git/info/exclude, ignore files of the ancestors of a root and then,
// while descending, each directory's .gitignore and .ignore files. Later
// rules take precedence over earlier ones, so a deeper directory can
// re-include (`!pattern`) what a shallower one excluded.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	GitDir        = ".git"
	GitIgnoreFile = ".gitignore"
	IgnoreFile    = ".ignore"

	systemGitConfig = "/etc/gitconfig"
)

var hostFS = osfs.New(string(filepath.Separator))

// Config selects which ignore sources are honored.
type Config struct {
	// Disabled turns off every ignore file.
	Disabled bool
	// Parents reads ignore files of the directories above a root, up to
	// the enclosing repository top.
	Parents bool
	// Global reads core.excludesFile or $XDG_CONFIG_HOME/git/ignore,
	// anchored at the repository top, or at the root outside a repository.
	Global bool
	// Exclude reads .git/info/exclude of the enclosing repository.
	Exclude bool
	// RequireGit applies git rules only inside a repository. .ignore
	// files apply everywhere.
	RequireGit bool
}

// Rules is an immutable snapshot of the rules in effect for one directory.
type Rules struct {
	cfg      Config
	inRepo   bool
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// ForRoot builds the rules in effect at root before root's own ignore
// files are read. root must be absolute. Unreadable ignore files are
// returned as errors and otherwise skipped.
func ForRoot(root string, cfg Config) (*Rules, []error) {
	r := &Rules{cfg: cfg}
	if cfg.Disabled {
		return r.build(), nil
	}

	var errs []error
	top, found := repoTop(root)
	r.inRepo = found

	if cfg.Global && r.gitAllowed() {
		base := root
		if found {
			base = top
		}
		ps, err := globalPatterns(split(base))
		if err != nil {
			errs = append(errs, err)
		}
		r.patterns = append(r.patterns, ps...)
	}
	if cfg.Exclude && found {
		ps, err := readFile(filepath.Join(top, GitDir, "info", "exclude"), split(top))
		if err != nil {
			errs = append(errs, err)
		}
		r.patterns = append(r.patterns, ps...)
	}
	if cfg.Parents && found && top != root {
		for _, dir := range between(top, root) {
			ps, dirErrs := r.dirPatterns(dir)
			errs = append(errs, dirErrs...)
			r.patterns = append(r.patterns, ps...)
		}
	}
	return r.build(), errs
}

// Descend returns the rules in effect for entries of dir, adding dir's
// own ignore files. dir must be absolute. The receiver is returned as is
// when dir carries no rules.
func (r *Rules) Descend(dir string) (*Rules, []error) {
	if r.cfg.Disabled {
		return r, nil
	}
	child := &Rules{cfg: r.cfg, inRepo: r.inRepo}
	var errs []error

	if !child.inRepo && hasGitDir(dir) {
		child.inRepo = true
		// with RequireGit the root carried no global rules
		if child.cfg.Global && child.cfg.RequireGit {
			ps, err := globalPatterns(split(dir))
			if err != nil {
				errs = append(errs, err)
			}
			child.patterns = append(child.patterns, ps...)
		}
		if child.cfg.Exclude {
			ps, err := readFile(filepath.Join(dir, GitDir, "info", "exclude"), split(dir))
			if err != nil {
				errs = append(errs, err)
			}
			child.patterns = append(child.patterns, ps...)
		}
	}
	ps, dirErrs := child.dirPatterns(dir)
	errs = append(errs, dirErrs...)
	child.patterns = append(child.patterns, ps...)

	if len(child.patterns) == 0 && child.inRepo == r.inRepo {
		return r, errs
	}
	child.patterns = append(append([]gitignore.Pattern(nil), r.patterns...), child.patterns...)
	return child.build(), errs
}

// Ignored reports whether the entry at the absolute path is excluded.
func (r *Rules) Ignored(path string, isDir bool) bool {
	if len(r.patterns) == 0 {
		return false
	}
	return r.matcher.Match(split(path), isDir)
}

// Len is the number of patterns in effect.
func (r *Rules) Len() int { return len(r.patterns) }

func (r *Rules) build() *Rules {
	r.matcher = gitignore.NewMatcher(r.patterns)
	return r
}

func (r *Rules) gitAllowed() bool {
	return !r.cfg.RequireGit || r.inRepo
}

// dirPatterns reads .gitignore then .ignore, so .ignore wins on conflict.
func (r *Rules) dirPatterns(dir string) ([]gitignore.Pattern, []error) {
	var (
		ps     []gitignore.Pattern
		errs   []error
		domain = split(dir)
	)
	if r.gitAllowed() {
		p, err := readFile(filepath.Join(dir, GitIgnoreFile), domain)
		if err != nil {
			errs = append(errs, err)
		}
		ps = append(ps, p...)
	}
	p, err := readFile(filepath.Join(dir, IgnoreFile), domain)
	if err != nil {
		errs = append(errs, err)
	}
	return append(ps, p...), errs
}

// readFile parses an ignore file. A missing file yields no patterns and
// no error.
func readFile(path string, domain []string) ([]gitignore.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ignore file %s: %w", path, err)
	}
	return Parse(data, domain), nil
}

// Parse turns ignore-file content into patterns anchored at domain.
// Blank lines and comments are skipped.
func Parse(data []byte, domain []string) []gitignore.Pattern {
	var ps []gitignore.Pattern
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		// trailing spaces are insignificant unless escaped
		if !strings.HasSuffix(line, `\ `) {
			line = strings.TrimRight(line, " ")
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	return ps
}

// globalPatterns reads the global excludes file anchored at domain, so
// its rules never match the components above domain.
func globalPatterns(domain []string) ([]gitignore.Pattern, error) {
	path, err := globalExcludesFile()
	if err != nil || path == "" {
		return nil, err
	}
	return readFile(path, domain)
}

// globalExcludesFile resolves core.excludesFile from the user's then the
// system's git config, falling back to $XDG_CONFIG_HOME/git/ignore.
func globalExcludesFile() (string, error) {
	home, _ := os.UserHomeDir()
	var configs []string
	if home != "" {
		configs = append(configs, filepath.Join(home, ".gitconfig"))
	}
	configs = append(configs, systemGitConfig)

	for _, cfgPath := range configs {
		path, err := excludesFileFrom(cfgPath)
		if err != nil {
			return "", err
		}
		if path != "" {
			if strings.HasPrefix(path, "~/") && home != "" {
				path = filepath.Join(home, path[2:])
			}
			return path, nil
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "ignore"), nil
	}
	if home == "" {
		return "", nil
	}
	return filepath.Join(home, ".config", "git", "ignore"), nil
}

// excludesFileFrom reads core.excludesFile from a git config file. A
// missing config yields "".
func excludesFileFrom(path string) (string, error) {
	f, err := hostFS.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read git config %s: %w", path, err)
	}
	defer f.Close()

	cfg := config.New()
	if err := config.NewDecoder(f).Decode(cfg); err != nil {
		return "", fmt.Errorf("parse git config %s: %w", path, err)
	}
	return cfg.Section("core").Options.Get("excludesfile"), nil
}

// repoTop finds the closest directory at or above dir holding a .git entry.
func repoTop(dir string) (string, bool) {
	for cur := dir; ; {
		if hasGitDir(cur) {
			return cur, true
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

func hasGitDir(dir string) bool {
	_, err := os.Lstat(filepath.Join(dir, GitDir))
	return err == nil
}

// between lists top and the directories under it leading to root,
// root excluded.
func between(top, root string) []string {
	var dirs []string
	for cur := filepath.Dir(root); ; cur = filepath.Dir(cur) {
		dirs = append(dirs, cur)
		if cur == top || cur == filepath.Dir(cur) {
			break
		}
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

// split turns an absolute path into the component form the matcher uses.
func split(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
