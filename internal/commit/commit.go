// Package commit implements commit objects stored in the CAS.
//
// This package provides:
// - Commit objects with parent links, identities and timestamps
// - A canonical text encoding hashed with BLAKE3
// - Reading and writing commits through any cas.CAS
// - Store, which resolves commits for the lineage traversal
//
// Encoding:
//
//	parent <hex>               (zero or more, in order)
//	author <name> <unix> +0000
//	committer <name> <unix> +0000
//
//	<message>
package commit

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/javanhut/lineage/internal/cas"
)

// ErrMalformed is returned when commit bytes cannot be decoded.
var ErrMalformed = errors.New("malformed commit")

// Commit represents a commit in the repository.
type Commit struct {
	Parents    []cas.Hash // Hashes of parent commits
	Author     string     // Commit author
	Committer  string     // Commit committer (can be different from author)
	AuthorTime time.Time  // When the change was authored
	CommitTime time.Time  // When the commit was created
	Message    string     // Commit message
}

// Summary returns the first line of the message.
func (c *Commit) Summary() string {
	summary, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(summary)
}

// Encode creates the canonical encoding of a commit.
func Encode(c *Commit) []byte {
	var buf bytes.Buffer

	for _, parent := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", parent)
	}
	fmt.Fprintf(&buf, "author %s %d +0000\n", c.Author, c.AuthorTime.Unix())
	fmt.Fprintf(&buf, "committer %s %d +0000\n", c.Committer, c.CommitTime.Unix())
	buf.WriteByte('\n')

	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Hash returns the content address of a commit.
func Hash(c *Commit) cas.Hash {
	return cas.SumB3(Encode(c))
}

// Decode parses the canonical encoding of a commit.
func Decode(data []byte) (*Commit, error) {
	header, message, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return nil, fmt.Errorf("%w: missing message separator", ErrMalformed)
	}

	c := &Commit{}
	for _, line := range strings.Split(string(header), "\n") {
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: bad header line %q", ErrMalformed, line)
		}

		switch key {
		case "parent":
			hash, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("%w: parent: %v", ErrMalformed, err)
			}
			c.Parents = append(c.Parents, hash)

		case "author", "committer":
			name, when, err := parseIdentity(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
			}
			if key == "author" {
				c.Author, c.AuthorTime = name, when
			} else {
				c.Committer, c.CommitTime = name, when
			}
		}
	}

	c.Message = strings.TrimSuffix(string(message), "\n")
	return c, nil
}

// parseIdentity splits "<name> <unix> <zone>". The name may be empty.
func parseIdentity(value string) (string, time.Time, error) {
	fields := strings.Fields(value)
	if n := len(fields); n > 0 && isZone(fields[n-1]) {
		fields = fields[:n-1]
	}
	if len(fields) == 0 {
		return "", time.Time{}, fmt.Errorf("short identity %q", value)
	}
	unix, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return strings.Join(fields[:len(fields)-1], " "), time.Unix(unix, 0), nil
}

func isZone(s string) bool {
	return len(s) == 5 && (s[0] == '+' || s[0] == '-')
}

// Writer stores commits.
type Writer struct {
	CAS cas.CAS
}

// NewWriter creates a new Writer.
func NewWriter(casStore cas.CAS) *Writer {
	return &Writer{CAS: casStore}
}

// Write stores c and returns its hash.
func (w *Writer) Write(c *Commit) (cas.Hash, error) {
	data := Encode(c)
	hash := cas.SumB3(data)
	if err := w.CAS.Put(hash, data); err != nil {
		return cas.Hash{}, fmt.Errorf("failed to store commit: %w", err)
	}
	return hash, nil
}

// Reader reads commit objects.
type Reader struct {
	CAS cas.CAS
}

// NewReader creates a new Reader.
func NewReader(casStore cas.CAS) *Reader {
	return &Reader{CAS: casStore}
}

// Read reads a commit object by hash.
func (r *Reader) Read(hash cas.Hash) (*Commit, error) {
	data, err := r.CAS.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", hash, err)
	}
	return c, nil
}
