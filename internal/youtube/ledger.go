package youtube

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Ledger is the download-history record: one "<extractor> <id>" line per
// downloaded video, in yt-dlp's download-archive format. It is read once at
// startup and appended to by yt-dlp as downloads complete; this type mirrors
// new entries in memory so a single run never re-downloads an identifier.
type Ledger struct {
	path string
	ids  map[string]struct{}
}

// LoadLedger reads the ledger file at path. A missing file yields an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	ledger := &Ledger{
		path: path,
		ids:  make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger, nil
		}
		return nil, fmt.Errorf("failed to read download ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Lines are "youtube <id>"; tolerate bare IDs from hand-edited files.
		fields := strings.Fields(line)
		ledger.ids[fields[len(fields)-1]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read download ledger: %w", err)
	}

	return ledger, nil
}

// Has reports whether the identifier was already downloaded.
func (l *Ledger) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Add records an identifier in memory.
//
// The on-disk file is owned by yt-dlp's download-archive writer; Add only
// keeps the in-memory view consistent within a run.
func (l *Ledger) Add(id string) {
	l.ids[id] = struct{}{}
}

// Len returns the number of recorded identifiers.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}
