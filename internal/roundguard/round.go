package roundguard

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultPrefix names round directories: round-214233.
const DefaultPrefix = "round-"

// ErrBadRoundID is returned for a round directory whose id does not parse.
var ErrBadRoundID = errors.New("unparseable round id")

// Round identifies one round's log directory.
type Round struct {
	ID  int64
	Dir string
}

// RoundFromPath finds the round that path belongs to: the first component of
// path, relative to root, named prefix followed by the round id. found is
// false when no component is a round directory. A round directory with a
// bad id is found and reported with ErrBadRoundID.
func RoundFromPath(root, prefix, path string) (round Round, found bool, err error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Round{}, false, nil
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if !strings.HasPrefix(part, prefix) {
			continue
		}

		dir := filepath.Join(append([]string{root}, parts[:i+1]...)...)
		id, err := parseRoundID(part[len(prefix):])
		if err != nil {
			return Round{Dir: dir}, true, fmt.Errorf("%s: %w", part, err)
		}
		return Round{ID: id, Dir: dir}, true, nil
	}

	return Round{}, false, nil
}

func parseRoundID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, ErrBadRoundID
	}
	return id, nil
}

// Discover walks root and returns every round directory beneath it, ordered
// by id. Directories with bad ids are skipped; round directories are not
// descended into.
func Discover(root, prefix string) ([]Round, error) {
	var rounds []Round

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !strings.HasPrefix(d.Name(), prefix) {
			return nil
		}

		if id, err := parseRoundID(d.Name()[len(prefix):]); err == nil {
			rounds = append(rounds, Round{ID: id, Dir: path})
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("discovering rounds in %s: %w", root, err)
	}

	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].ID < rounds[j].ID
	})
	return rounds, nil
}
