package liveness

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"
)

var (
	// ErrNoRounds is returned for a status document that names no round.
	ErrNoRounds = errors.New("status document lists no rounds")
	// ErrIncompleteStatus is returned when a server entry carries no round
	// id, as happens when that server failed to answer the status query.
	// Its round can not be told apart from a finished one.
	ErrIncompleteStatus = errors.New("status document has a server without a round")
)

// ActiveRounds is the set of rounds a status document reports as running.
type ActiveRounds struct {
	ids map[int64]struct{}
	max int64
}

// Contains reports whether id is active. Rounds newer than any listed round
// are active too: they started after the document was written.
func (a ActiveRounds) Contains(id int64) bool {
	if _, ok := a.ids[id]; ok {
		return true
	}
	return id > a.max
}

// Len returns the number of listed rounds.
func (a ActiveRounds) Len() int {
	return len(a.ids)
}

// ParseActiveRounds collects the round of every server in a serverinfo-style
// JSON document. Ids may be numbers or numeric strings. The document is
// either a single server or a map (or array) of servers; scalar members
// such as "refreshtime" are ignored. Any server object without a usable
// round_id fails the whole document.
//
//	{"tgstation": {"round_id": "214233", "players": 61}, "refreshtime": 30}
func ParseActiveRounds(p *fastjson.Parser, data []byte) (ActiveRounds, error) {
	v, err := p.ParseBytes(data)
	if err != nil {
		return ActiveRounds{}, fmt.Errorf("parsing status document: %w", err)
	}

	rounds := ActiveRounds{ids: make(map[int64]struct{})}
	if err := collectRoundIDs(v, &rounds); err != nil {
		return ActiveRounds{}, err
	}
	if rounds.Len() == 0 {
		return ActiveRounds{}, ErrNoRounds
	}
	return rounds, nil
}

func collectRoundIDs(v *fastjson.Value, rounds *ActiveRounds) error {
	switch v.Type() {
	case fastjson.TypeObject:
		if id := v.Get("round_id"); id != nil {
			return addRoundID(id, rounds)
		}
		obj, _ := v.Object()
		var visitErr error
		obj.Visit(func(key []byte, child *fastjson.Value) {
			if visitErr == nil {
				visitErr = collectServer(string(key), child, rounds)
			}
		})
		return visitErr

	case fastjson.TypeArray:
		arr, _ := v.Array()
		for i, child := range arr {
			if err := collectServer(strconv.Itoa(i), child, rounds); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectServer(name string, v *fastjson.Value, rounds *ActiveRounds) error {
	if v.Type() == fastjson.TypeArray {
		return collectRoundIDs(v, rounds)
	}
	if v.Type() != fastjson.TypeObject {
		return nil
	}

	id := v.Get("round_id")
	if id == nil {
		return fmt.Errorf("%w: %q", ErrIncompleteStatus, name)
	}
	return addRoundID(id, rounds)
}

func addRoundID(v *fastjson.Value, rounds *ActiveRounds) error {
	var id int64
	var err error

	switch v.Type() {
	case fastjson.TypeNumber:
		id, err = v.Int64()
	case fastjson.TypeString:
		var s []byte
		s, err = v.StringBytes()
		if err == nil {
			id, err = strconv.ParseInt(string(s), 10, 64)
		}
	default:
		err = fmt.Errorf("unexpected %s", v.Type())
	}
	if err != nil {
		return fmt.Errorf("bad round_id: %w", err)
	}

	rounds.ids[id] = struct{}{}
	if id > rounds.max {
		rounds.max = id
	}
	return nil
}
