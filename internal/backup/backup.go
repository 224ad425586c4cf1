// Package backup snapshots the SQLite participant database before anything
// destructive happens to it and restores those snapshots on request.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
)

const stampLayout = "20060102-150405"

// ErrNoDatabase is returned when there is no participant database to snapshot.
var ErrNoDatabase = errors.New("no participant database to back up")

type Info struct {
	Path    string
	TakenAt time.Time
	Reason  string
	Size    int64
}

// Name is the snapshot file name inside the backup directory.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

// NewManager keeps snapshots of dbPath in a "backups" directory next to it.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create snapshots the database. reason is slugged into the file name
// ("manual", "init-force", "pre-restore").
func (m *Manager) Create(reason string) (Info, error) {
	return m.create(reason, true)
}

func (m *Manager) create(reason string, rotate bool) (Info, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, ErrNoDatabase
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	takenAt := m.now().UTC()
	path, err := m.uniquePath(takenAt, slug(reason))
	if err != nil {
		return Info{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Info{}, fmt.Errorf("failed to back up participant data: %w", err)
	}
	logger.Info("Participant data backed up", "path", path, "reason", reason)

	if rotate {
		if err := m.prune(); err != nil {
			logger.Warn("Failed to prune old backups", "error", err)
		}
	}

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, TakenAt: takenAt, Reason: slug(reason), Size: st.Size()}, nil
}

func (m *Manager) uniquePath(at time.Time, reason string) (string, error) {
	base := constants.BackupFilePrefix + at.Format(stampLayout) + "-" + reason
	path := filepath.Join(m.backupDir, base+constants.BackupFileSuffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s.%d%s", base, n, constants.BackupFileSuffix))
	}
}

// List returns the snapshots newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info.Path = filepath.Join(m.backupDir, e.Name())
		if st, err := e.Info(); err == nil {
			info.Size = st.Size()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TakenAt.Equal(out[j].TakenAt) {
			return out[i].Path > out[j].Path
		}
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out, nil
}

// parseName reads "studyclock-20260401-093000-manual[.N].db".
func parseName(name string) (Info, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return Info{}, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(rest) < len(stampLayout) {
		return Info{}, false
	}
	at, err := time.Parse(stampLayout, rest[:len(stampLayout)])
	if err != nil {
		return Info{}, false
	}
	reason := strings.TrimPrefix(rest[len(stampLayout):], "-")
	if i := strings.IndexByte(reason, '.'); i >= 0 {
		reason = reason[:i]
	}
	return Info{TakenAt: at, Reason: reason}, true
}

func (m *Manager) prune() error {
	all, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(all); i++ {
		if err := os.Remove(all[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", all[i].Name(), err)
		}
		logger.Debug("Pruned backup", "path", all[i].Path)
	}
	return nil
}

// Resolve finds a snapshot given its path or its file name in the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	if !filepath.IsAbs(name) {
		candidate := filepath.Join(m.backupDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("backup not found: tried %s and %s", name, m.backupDir)
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first with reason "pre-restore". The store must be
// closed by the caller.
func (m *Manager) Restore(path string) (Info, error) {
	if err := verify(path); err != nil {
		return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous Info
	if _, err := os.Stat(m.dbPath); err == nil {
		p, err := m.create("pre-restore", false)
		if err != nil {
			return Info{}, fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		previous = p
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return Info{}, fmt.Errorf("failed to restore participant data: %w", err)
	}
	logger.Info("Participant data restored", "from", path)
	return previous, nil
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ping(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		logger.Debug("VACUUM INTO failed, copying file instead", "error", err)
		db.Close()
		return copyFile(src, dst)
	}
	return nil
}

func verify(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return ping(db)
}

func ping(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}

func slug(reason string) string {
	reason = strings.ToLower(strings.TrimSpace(reason))
	if reason == "" {
		return "manual"
	}
	var b strings.Builder
	for _, r := range reason {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
