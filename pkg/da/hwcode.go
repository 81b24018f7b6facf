package da

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"
)

// HWCodeSet is a set of wanted hw codes. An empty or nil set means all of
// them.
type HWCodeSet map[uint16]struct{}

func NewHWCodeSet(codes ...uint16) HWCodeSet {
	s := make(HWCodeSet)
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s HWCodeSet) Contains(code uint16) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in the set in ascending order.
func (s HWCodeSet) Sorted() []uint16 {
	res := make([]uint16, 0, len(s))
	for c := range s {
		res = append(res, c)
	}
	slices.Sort(res)
	return res
}

func (s HWCodeSet) String() string {
	if len(s) == 0 {
		return "all"
	}
	var parts []string
	for _, c := range s.Sorted() {
		parts = append(parts, fmt.Sprintf("%#x", c))
	}
	return strings.Join(parts, ",")
}

// ParseHWCode parses a single hw code, either decimal or 0x-prefixed hex.
func ParseHWCode(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	var err error
	var res uint64
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		res, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		res, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid hw code %q", s)
	}
	return uint16(res), nil
}

// ParseHWCodes parses a comma separated list of hw codes, eg. "16,0x20,48".
// An empty list returns a nil set, ie. all codes. All invalid tokens are
// reported.
func ParseHWCodes(list string) (HWCodeSet, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	s := make(HWCodeSet)
	var errs error
	for _, part := range strings.Split(list, ",") {
		code, err := ParseHWCode(part)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		s[code] = struct{}{}
	}
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

// Filter returns the entries whose hw code is in want, in bundle order.
func (b *Bundle) Filter(want HWCodeSet) []*Entry {
	var res []*Entry
	for _, e := range b.Entries {
		if want.Contains(e.HWCode) {
			res = append(res, e)
		}
	}
	return res
}
