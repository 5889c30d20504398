package nrfu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ifShortenRule maps one verbose interface pattern to its short prefix.
// Rules are tried in order; the sub-ported Ethernet form comes first because
// plain Ethernet would otherwise match its prefix.
type ifShortenRule struct {
	pattern string
	prefix  string
}

var ifShortenRules = []ifShortenRule{
	{`Ethernet(\d+)/1`, "E"},
	{`Ethernet(\d+)`, "E"},
	{`Management(\d+)`, "M"},
	{`Port-Channel(\d+)`, "Po"},
	{`Vlan(\d+)`, "V"},
}

var ifShortenRegex = func() *regexp.Regexp {
	alts := make([]string, len(ifShortenRules))
	for i, r := range ifShortenRules {
		alts[i] = "(?:" + r.pattern + ")"
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}()

// ShortenIfName rewrites verbose interface names into their short mnemonic
// form, e.g. "Management1" -> "M1", "Port-Channel16" -> "Po16",
// "Ethernet49/1" -> "E49". Text that matches no rule is left as is.
func ShortenIfName(name string) string {
	return ifShortenRegex.ReplaceAllStringFunc(name, func(match string) string {
		groups := ifShortenRegex.FindStringSubmatch(match)
		for i, g := range groups[1:] {
			if g != "" {
				return ifShortenRules[i].prefix + g
			}
		}
		return match
	})
}

// InventorySlot returns the transceiver slot key for an interface name: the
// text following the last "E" of its short form. "Ethernet60" -> "60".
func InventorySlot(name string) string {
	short := ShortenIfName(name)
	if i := strings.LastIndex(short, "E"); i >= 0 {
		return short[i+1:]
	}
	return short
}

var ifNumbers = regexp.MustCompile(`\d+`)

// SortInterfaces returns a copy of names ordered by the numbers embedded in
// each name, so "Ethernet2" sorts before "Ethernet10".
func SortInterfaces(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)

	keys := make(map[string][]int, len(out))
	for _, n := range out {
		var nums []int
		for _, s := range ifNumbers.FindAllString(n, -1) {
			v, _ := strconv.Atoi(s)
			nums = append(nums, v)
		}
		keys[n] = nums
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := keys[out[i]], keys[out[j]]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return out[i] < out[j]
	})
	return out
}
