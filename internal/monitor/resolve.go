package monitor

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/majorcontext/watchprocess/internal/log"
)

var errNotOnPath = errors.New("executable not found in search path")

// searchState tracks one resolution: the name looked up, where the shadow
// itself lives, and the directories not yet ruled out.
type searchState struct {
	base    string
	initial string
	dirs    []string
	target  string
}

// Resolve finds the next instance of argv0 on searchPath that is not the
// shadow entry argv0 itself resolves to. It returns that instance and the
// search path with every directory up to and including the match's
// directory removed.
//
// The path list is tested before it is narrowed, so a single-directory path
// can never resolve: the only instance it holds is the shadow.
func Resolve(argv0, searchPath string) (resolved, remaining string, err error) {
	st := &searchState{
		base: filepath.Base(argv0),
		dirs: filepath.SplitList(searchPath),
	}

	// The shadow's own location is resolved from the caller's directory, the
	// way the invoking shell found it: argv0 itself when it has a separator,
	// otherwise the first lookup of the bare name with relative and empty
	// entries taken against the caller's directory. Only the narrowing below
	// runs in the scratch directory.
	if strings.ContainsRune(argv0, os.PathSeparator) || strings.ContainsRune(argv0, '/') {
		st.initial, err = filepath.Abs(argv0)
		if err != nil {
			return "", "", &Error{Kind: KindPathResolution, Name: argv0, Err: err}
		}
	} else {
		st.initial, _, err = findExecutable(st.base, st.dirs)
		if err != nil {
			return "", "", st.fail(err)
		}
	}

	if err := withScratchDir(st.resolve); err != nil {
		return "", "", err
	}
	return st.target, strings.Join(st.dirs, string(os.PathListSeparator)), nil
}

func (s *searchState) resolve() error {
	for len(s.dirs) > 0 {
		match, idx, err := findExecutable(s.base, s.dirs)
		log.Debug("path lookup", "name", s.base, "match", match, "dirs", s.joined())
		if err != nil {
			return s.fail(err)
		}
		if match != s.initial {
			s.target = match
			s.dirs = s.dirs[idx+1:]
			return nil
		}
		s.dirs = s.dirs[1:]
	}
	return s.fail(errors.New("only the shadow entry was found"))
}

func (s *searchState) fail(err error) error {
	return &Error{Kind: KindPathResolution, Name: s.base, Path: s.initial, Err: err}
}

func (s *searchState) joined() string {
	return strings.Join(s.dirs, string(os.PathListSeparator))
}

// findExecutable returns the first executable called name in dirs and the
// index of the directory it was found in. Relative and empty entries are
// taken relative to the current directory.
func findExecutable(name string, dirs []string) (string, int, error) {
	for i, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		candidate, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path, i, nil
		}
	}
	return "", -1, errNotOnPath
}
