// Package ipindex replaces full client IPs with stable salted-hash indices,
// the privacy boundary between extraction output and anything published
// downstream. The index assignment is persistent: the same address maps to
// the same index across runs as long as the same salt is used.
package ipindex

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/crimson-sun/skimmer/internal/sink"
)

// nonRoutableIndex is the reserved index for addresses that cannot appear
// on the public internet (private ranges, loopback, link-local). These are
// pooled under one index: their exact identity is never meaningful
// downstream.
const nonRoutableIndex = 0

// Indexer assigns indices to hashed addresses. The persistent map file
// holds "hash index" pairs, one per line.
type Indexer struct {
	path string
	salt []byte

	mu    sync.Mutex
	index map[string]uint64 // hash -> index
	next  uint64
}

// Open loads (or initializes) the index map at path. The salt is mandatory:
// unsalted hashes of IPv4 addresses are trivially reversible.
func Open(path string, salt string) (*Indexer, error) {
	if salt == "" {
		return nil, errors.New("ipindex: empty salt")
	}

	ix := &Indexer{
		path:  path,
		salt:  []byte(salt),
		index: make(map[string]uint64),
		next:  nonRoutableIndex + 1,
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ipindex: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var hash string
		var idx uint64
		if _, err := fmt.Sscanf(scanner.Text(), "%s %d", &hash, &idx); err != nil {
			return nil, fmt.Errorf("ipindex: malformed entry %q in %s", scanner.Text(), path)
		}
		ix.index[hash] = idx
		if idx >= ix.next {
			ix.next = idx + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ipindex: read %s: %w", path, err)
	}
	return ix, nil
}

// Index returns the stable index for an address, assigning the next free
// index on first sight. Non-routable addresses all share one index.
func (ix *Indexer) Index(ip string) uint64 {
	if NonRoutable(ip) {
		return nonRoutableIndex
	}

	hash := ix.hash(ip)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if idx, ok := ix.index[hash]; ok {
		return idx
	}
	idx := ix.next
	ix.next++
	ix.index[hash] = idx
	return idx
}

// Save writes the full index map back to its file, sorted by index so the
// file is diffable between runs.
func (ix *Indexer) Save() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	type entry struct {
		hash string
		idx  uint64
	}
	entries := make([]entry, 0, len(ix.index))
	for hash, idx := range ix.index {
		entries = append(entries, entry{hash, idx})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	tmp := ix.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("ipindex: create %s: %w", tmp, err)
	}
	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %d\n", e.hash, e.idx)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("ipindex: flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ipindex: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		return fmt.Errorf("ipindex: finalize %s: %w", ix.path, err)
	}
	return nil
}

func (ix *Indexer) hash(ip string) string {
	mac := hmac.New(sha256.New, ix.salt)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// NonRoutable reports whether the address cannot belong to an external
// client: unparsable, private, loopback, link-local, or unspecified.
func NonRoutable(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsPrivate() ||
		parsed.IsLoopback() ||
		parsed.IsLinkLocalUnicast() ||
		parsed.IsLinkLocalMulticast() ||
		parsed.IsUnspecified()
}

// IndexFile reads an aligned ips.txt stream and writes indexed_ips.txt next
// to it, preserving line positions.
func (ix *Indexer) IndexFile(ipsPath string) error {
	in, err := os.Open(ipsPath)
	if err != nil {
		return fmt.Errorf("ipindex: open %s: %w", ipsPath, err)
	}
	defer in.Close()

	outPath := filepath.Join(filepath.Dir(ipsPath), "indexed_ips.txt")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("ipindex: create %s: %w", outPath, err)
	}
	w := bufio.NewWriter(out)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		idx := ix.Index(scanner.Text())
		if _, err := w.WriteString(strconv.FormatUint(idx, 10)); err != nil {
			out.Close()
			return fmt.Errorf("ipindex: write %s: %w", outPath, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			out.Close()
			return fmt.Errorf("ipindex: write %s: %w", outPath, err)
		}
	}
	if err := scanner.Err(); err != nil {
		out.Close()
		return fmt.Errorf("ipindex: read %s: %w", ipsPath, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("ipindex: flush %s: %w", outPath, err)
	}
	return out.Close()
}

// IndexTree walks root for ips.txt streams and indexes each one.
func (ix *Indexer) IndexTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) != sink.FileIPs {
			return nil
		}
		return ix.IndexFile(path)
	})
}
