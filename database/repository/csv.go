package repository

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ctopbusca/ctop-busca/database/model"
)

var (
	usersHeader     = []string{"usuario", "senha"}
	accessLogHeader = []string{"usuario", "datahora"}
)

// CSVUserRepository keeps users in a two column csv file (usuario, senha).
type CSVUserRepository struct {
	path string
	mu   sync.Mutex
}

func NewCSVUserRepository(path string) *CSVUserRepository {
	return &CSVUserRepository{path: path}
}

func (r *CSVUserRepository) Exists() (bool, error) {
	_, err := os.Stat(r.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (r *CSVUserRepository) Load() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := readCSV(r.path, usersHeader)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if row[0] == "" {
			return nil, fmt.Errorf("%w: %s line %d: empty username", ErrStoreUnavailable, r.path, i+2)
		}
		if seen[row[0]] {
			return nil, fmt.Errorf("%w: %s line %d: duplicate username %q", ErrStoreUnavailable, r.path, i+2, row[0])
		}
		seen[row[0]] = true
		users = append(users, model.User{Id: i + 1, Username: row[0], PasswordHash: row[1]})
	}
	return users, nil
}

func (r *CSVUserRepository) Save(users []model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.PasswordHash})
	}
	return writeCSVAtomic(r.path, usersHeader, rows)
}

// CSVAccessLogRepository appends access events to a csv file
// (usuario, datahora). Existing lines are never rewritten.
type CSVAccessLogRepository struct {
	path     string
	location *time.Location
	mu       sync.Mutex
}

func NewCSVAccessLogRepository(path string) *CSVAccessLogRepository {
	return &CSVAccessLogRepository{path: path, location: time.Local}
}

func (r *CSVAccessLogRepository) Append(event model.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(accessLogHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{event.Username, event.FormattedTime()}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// List returns the events in file order. A missing file means nothing has
// been recorded yet.
func (r *CSVAccessLogRepository) List() ([]model.AccessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := readCSV(r.path, accessLogHeader)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.AccessEvent{}, nil
	}
	if err != nil {
		return nil, err
	}
	events := make([]model.AccessEvent, 0, len(rows))
	for i, row := range rows {
		ts, err := time.ParseInLocation(model.AccessTimeFormat, row[1], r.location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrStoreUnavailable, r.path, i+2, err)
		}
		events = append(events, model.AccessEvent{Id: i + 1, Username: row[0], Timestamp: ts})
	}
	return events, nil
}

// readCSV reads path and checks its header. A missing file is reported as
// ErrStoreUnavailable wrapping fs.ErrNotExist.
func readCSV(path string, header []string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	rd := csv.NewReader(bytes.NewReader(data))
	rd.FieldsPerRecord = len(header)

	got, err := rd.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrStoreUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, path, err)
	}
	for i := range header {
		if strings.TrimSpace(got[i]) != header[i] {
			return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrStoreUnavailable, path, got)
		}
	}

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, path, err)
	}
	return rows, nil
}

// writeCSVAtomic writes to a temporary file next to path and renames it over
// path, so readers see either the old or the new content.
func writeCSVAtomic(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
