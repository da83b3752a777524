package bufy

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"
)

// DefaultRetention is how many backups per ledger are kept by default.
const DefaultRetention = 5

const (
	ledgerExt      = ".json"
	backupsDirName = "backups"
	stateFileName  = ".bufy_state.json"
	backupStamp    = "20060102_1504"
)

// Store is a directory of ledger files. Each ledger lives in
// <home>/<canonical>.json with its backups under
// <home>/backups/<canonical>/.
type Store struct {
	home      string
	retention int
}

// NewStore opens (creating if needed) a ledger directory.
func NewStore(home string) (*Store, error) {
	if home == "" {
		return nil, Validationf("store directory is required")
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, Persistencef(err, "creating store directory %q", home)
	}
	return &Store{home: home, retention: DefaultRetention}, nil
}

// Home returns the store's root directory.
func (s *Store) Home() string { return s.home }

// SetRetention sets how many backups to keep per ledger. At least one
// backup is always retained.
func (s *Store) SetRetention(n int) {
	if n < 1 {
		n = 1
	}
	s.retention = n
}

// CanonicalName maps a ledger name to its file stem: lowercase, every
// non-alphanumeric rune replaced by an underscore. An empty result
// becomes "ledger".
func CanonicalName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "ledger"
	}
	return b.String()
}

func (s *Store) ledgerPath(name string) string {
	return filepath.Join(s.home, CanonicalName(name)+ledgerExt)
}

func (s *Store) backupDir(name string) string {
	return filepath.Join(s.home, backupsDirName, CanonicalName(name))
}

// Save writes the ledger atomically: the document goes to a temporary
// file in the same directory which is then renamed over the target, so a
// crash mid-write never corrupts the previous save. An existing file is
// backed up before it is overwritten.
func (s *Store) Save(l *Ledger) error {
	return s.save(l, "")
}

// SaveWithBackup is Save with a note embedded in the backup file name.
func (s *Store) SaveWithBackup(l *Ledger, note string) error {
	return s.save(l, note)
}

func (s *Store) save(l *Ledger, note string) error {
	if _, err := s.Backup(l.Name(), note); err != nil && !os.IsNotExist(unwrapOS(err)) {
		return err
	}

	target := s.ledgerPath(l.Name())
	tmp, err := os.CreateTemp(s.home, CanonicalName(l.Name())+"-*.tmp")
	if err != nil {
		return Persistencef(err, "creating temporary file for %q", l.Name())
	}
	defer os.Remove(tmp.Name())

	if err := l.EncodeLedger(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Persistencef(err, "flushing %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return Persistencef(err, "closing %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Persistencef(err, "replacing %q", target)
	}
	return s.rememberLast(l.Name())
}

// Backup copies the ledger's current file into its backup directory and
// returns the backup's path. The file is named
// <canonical>_<YYYYMMDD_HHMM>[_<note>].json.
func (s *Store) Backup(name, note string) (string, error) {
	src := s.ledgerPath(name)
	in, err := os.Open(src)
	if err != nil {
		return "", Persistencef(err, "opening %q for backup", src)
	}
	defer in.Close()

	dir := s.backupDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", Persistencef(err, "creating backup directory %q", dir)
	}
	stem := CanonicalName(name) + "_" + time.Now().Format(backupStamp)
	if n := CanonicalName(note); note != "" && n != "ledger" {
		stem += "_" + n
	}
	dst := filepath.Join(dir, stem+ledgerExt)

	out, err := os.Create(dst)
	if err != nil {
		return "", Persistencef(err, "creating backup %q", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", Persistencef(err, "writing backup %q", dst)
	}
	if err := out.Close(); err != nil {
		return "", Persistencef(err, "closing backup %q", dst)
	}
	if err := s.pruneBackups(name); err != nil {
		return "", err
	}
	return dst, nil
}

// Backups lists a ledger's backup files, newest first.
func (s *Store) Backups(name string) ([]string, error) {
	entries, err := os.ReadDir(s.backupDir(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, Persistencef(err, "listing backups of %q", name)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ledgerExt) {
			out = append(out, filepath.Join(s.backupDir(name), e.Name()))
		}
	}
	// the timestamp in the name sorts lexicographically
	slices.Sort(out)
	slices.Reverse(out)
	return out, nil
}

// pruneBackups deletes the oldest backups beyond the retention limit.
func (s *Store) pruneBackups(name string) error {
	backups, err := s.Backups(name)
	if err != nil {
		return err
	}
	for _, path := range backups[min(s.retention, len(backups)):] {
		if err := os.Remove(path); err != nil {
			return Persistencef(err, "pruning backup %q", path)
		}
		log.Printf("pruned backup %s", filepath.Base(path))
	}
	return nil
}

// Load reads a ledger by name. Schema migrations happen transparently;
// their notes are available via Notes. Dangling references are logged,
// never fatal.
func (s *Store) Load(name string) (*Ledger, error) {
	path := s.ledgerPath(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, Persistencef(err, "opening ledger %q", path)
	}
	defer f.Close()

	l, err := DecodeLedger(f)
	if err != nil {
		return nil, err
	}
	for _, w := range l.Warnings() {
		log.Printf("ledger %s: %s", name, w)
	}
	if err := s.rememberLast(l.Name()); err != nil {
		return nil, err
	}
	return l, nil
}

// Restore replaces a ledger's current file with one of its backups. The
// current file is backed up first, so a restore is itself undoable.
func (s *Store) Restore(name, backupPath string) (*Ledger, error) {
	in, err := os.Open(backupPath)
	if err != nil {
		return nil, Persistencef(err, "opening backup %q", backupPath)
	}
	defer in.Close()

	// validate before touching anything
	restored, err := DecodeLedger(in)
	if err != nil {
		return nil, err
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil, Persistencef(err, "rewinding backup %q", backupPath)
	}

	if _, err := s.Backup(name, "pre_restore"); err != nil && !os.IsNotExist(unwrapOS(err)) {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.home, CanonicalName(name)+"-*.tmp")
	if err != nil {
		return nil, Persistencef(err, "creating temporary file for %q", name)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return nil, Persistencef(err, "copying backup %q", backupPath)
	}
	if err := tmp.Close(); err != nil {
		return nil, Persistencef(err, "closing %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.ledgerPath(name)); err != nil {
		return nil, Persistencef(err, "replacing ledger %q", name)
	}
	return restored, nil
}

// List returns the names of all ledger files in the store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.home)
	if err != nil {
		return nil, Persistencef(err, "listing store %q", s.home)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ledgerExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ledgerExt))
	}
	slices.Sort(out)
	return out, nil
}

// storeState is the tiny sidecar remembering the last used ledger.
type storeState struct {
	LastLedger string `json:"lastLedger"`
}

// LastLedger returns the most recently saved or loaded ledger name.
func (s *Store) LastLedger() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.home, stateFileName))
	if err != nil {
		return "", false
	}
	var state storeState
	if err := json.Unmarshal(data, &state); err != nil || state.LastLedger == "" {
		return "", false
	}
	return state.LastLedger, true
}

func (s *Store) rememberLast(name string) error {
	data, err := json.Marshal(storeState{LastLedger: name})
	if err != nil {
		return Persistencef(err, "encoding store state")
	}
	path := filepath.Join(s.home, stateFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return Persistencef(err, "writing %q", path)
	}
	return nil
}

// unwrapOS digs the underlying os error out of a persistence error.
func unwrapOS(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return err
}
