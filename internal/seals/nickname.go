// Package seals derives memorable nicknames for commits.
//
// A nickname is adjective-noun-verb-prefix, for example
// amber-heron-drifts-447abe9b. Words are chosen from a BLAKE3 digest of the
// commit id, so the same commit always gets the same nickname regardless of
// which backend produced the id.
package seals

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"

	"github.com/javanhut/lineage/internal/lineage"
)

// PrefixLen is the number of id characters kept as the nickname suffix.
const PrefixLen = 8

var (
	adjectives = []string{
		"amber", "ashen", "azure", "brisk", "candid", "cedar", "civic", "coral",
		"dusky", "eager", "early", "elder", "fabled", "feral", "fleet", "frosty",
		"gilded", "glassy", "hazel", "hollow", "humble", "idle", "inky", "jade",
		"keen", "lanky", "lunar", "mellow", "misty", "nimble", "ochre", "olive",
	}

	nouns = []string{
		"anvil", "badger", "beacon", "birch", "bramble", "canyon", "cinder", "comet",
		"delta", "dune", "ember", "fjord", "furnace", "glacier", "harbor", "heron",
		"hollow", "kestrel", "lantern", "ledger", "marsh", "meteor", "otter", "quarry",
		"raven", "reef", "saddle", "sparrow", "spire", "thicket", "tundra", "willow",
	}

	verbs = []string{
		"anchors", "barters", "beckons", "braids", "carves", "charts", "dances", "drifts",
		"echoes", "forges", "gathers", "glides", "hammers", "hums", "kindles", "lingers",
		"mends", "murmurs", "nests", "paddles", "ponders", "prowls", "rambles", "ripples",
		"roams", "sails", "settles", "smolders", "tends", "tinkers", "wanders", "weaves",
	}
)

// Nickname returns the nickname for id.
func Nickname(id lineage.ID) string {
	sum := blake3.Sum256([]byte(strings.ToLower(string(id))))
	pick := func(words []string, at int) string {
		n := binary.BigEndian.Uint16(sum[at : at+2])
		return words[int(n)%len(words)]
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		pick(adjectives, 0), pick(nouns, 2), pick(verbs, 4), prefix(id))
}

func prefix(id lineage.ID) string {
	s := strings.ToLower(string(id))
	if len(s) > PrefixLen {
		return s[:PrefixLen]
	}
	return s
}

// Prefix extracts the id prefix from a nickname.
func Prefix(nickname string) (string, bool) {
	parts := strings.Split(nickname, "-")
	if len(parts) != 4 {
		return "", false
	}
	last := parts[3]
	if len(last) != PrefixLen {
		return "", false
	}
	if _, err := hex.DecodeString(last); err != nil {
		return "", false
	}
	return last, true
}

// Matches reports whether s names id, either as a nickname or as an id prefix
// of at least four characters.
func Matches(s string, id lineage.ID) bool {
	full := strings.ToLower(string(id))
	s = strings.ToLower(s)
	if p, ok := Prefix(s); ok {
		return s == Nickname(id) && strings.HasPrefix(full, p)
	}
	return len(s) >= 4 && strings.HasPrefix(full, s)
}
