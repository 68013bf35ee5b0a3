package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"vast/internal/fileutil"
	"vast/internal/logging"
	"vast/internal/services"
)

const (
	// ConfigFileName is the sidecar stored at the archive base directory.
	ConfigFileName = ".vast-config.json"
	lockFileName   = ".vast-config.lock"
	componentName  = "archive"
	dirMode        = 0o755
	configFileMode = 0o644
)

// Config holds user chosen names keyed by LMS id. Ids are written as decimal
// JSON object keys.
type Config struct {
	CourseDirectoryNames map[int64]string `json:"courseDirectoryNames"`
	TermNames            map[int64]string `json:"termNames"`
}

// NewConfig returns a Config with empty maps.
func NewConfig() Config {
	return Config{
		CourseDirectoryNames: map[int64]string{},
		TermNames:            map[int64]string{},
	}
}

func (c *Config) ensureMaps() {
	if c.CourseDirectoryNames == nil {
		c.CourseDirectoryNames = map[int64]string{}
	}
	if c.TermNames == nil {
		c.TermNames = map[int64]string{}
	}
}

// Store reads and writes the sidecar of one archive base directory.
type Store struct {
	baseDir string
	logger  *slog.Logger
}

// NewStore creates a Store for baseDir.
func NewStore(baseDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		baseDir: baseDir,
		logger:  logging.NewComponentLogger(logger, componentName),
	}
}

// BaseDir returns the archive root.
func (s *Store) BaseDir() string { return s.baseDir }

// Path returns the sidecar location.
func (s *Store) Path() string { return filepath.Join(s.baseDir, ConfigFileName) }

// Load reads the sidecar. A missing, unreadable or malformed file yields an
// empty Config; the latter two are logged.
func (s *Store) Load() Config {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "archive config unreadable", "archive_config_read_failed",
				logging.String("path", s.Path()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "default directory names are used"),
				logging.String(logging.FieldErrorHint, "check permissions on the archive base directory"),
			)
		}
		return NewConfig()
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.WarnWithContext(s.logger, "archive config is not valid json", "archive_config_parse_failed",
			logging.String("path", s.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "default directory names are used"),
			logging.String(logging.FieldErrorHint, "fix or delete the file and re-run setup"),
		)
		return NewConfig()
	}
	cfg.ensureMaps()
	return cfg
}

// Save writes cfg atomically, replacing any previous sidecar.
func (s *Store) Save(cfg Config) error {
	cfg.ensureMaps()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, componentName, "encode config", "", err)
	}
	if err := os.MkdirAll(s.baseDir, dirMode); err != nil {
		return services.Wrap(services.ErrFilesystem, componentName, "create base directory", s.baseDir, err)
	}
	if err := fileutil.WriteFileAtomic(s.Path(), append(data, '\n'), configFileMode); err != nil {
		return services.Wrap(services.ErrFilesystem, componentName, "write config", s.Path(), err)
	}
	return nil
}

// Update runs a locked read-modify-write cycle on the sidecar. The lock is
// advisory and only serializes processes on the same host.
func (s *Store) Update(modify func(*Config) error) error {
	if err := os.MkdirAll(s.baseDir, dirMode); err != nil {
		return services.Wrap(services.ErrFilesystem, componentName, "create base directory", s.baseDir, err)
	}
	lock := flock.New(filepath.Join(s.baseDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return services.Wrap(services.ErrFilesystem, componentName, "lock config", lock.Path(), err)
	}
	defer func() { _ = lock.Unlock() }()

	cfg := s.Load()
	if err := modify(&cfg); err != nil {
		return err
	}
	return s.Save(cfg)
}

// SetCourseDirectoryName stores a directory name override for a course. A
// blank name removes the override.
func (s *Store) SetCourseDirectoryName(courseID int64, name string) error {
	return s.Update(func(cfg *Config) error {
		setOrDelete(cfg.CourseDirectoryNames, courseID, name)
		return nil
	})
}

// SetTermName stores the display name of an enrollment term. A blank name
// removes it.
func (s *Store) SetTermName(termID int64, name string) error {
	return s.Update(func(cfg *Config) error {
		setOrDelete(cfg.TermNames, termID, name)
		return nil
	})
}

func setOrDelete(m map[int64]string, id int64, name string) {
	if name = strings.TrimSpace(name); name == "" {
		delete(m, id)
		return
	}
	m[id] = name
}

// LoadConfig reads the sidecar in baseDir without logging.
func LoadConfig(baseDir string) Config {
	return NewStore(baseDir, nil).Load()
}

// SaveConfig writes cfg to the sidecar in baseDir.
func SaveConfig(baseDir string, cfg Config) error {
	return NewStore(baseDir, nil).Save(cfg)
}

// UpdateCourseDirectoryName sets one course's directory name in baseDir.
func UpdateCourseDirectoryName(baseDir string, courseID int64, name string) error {
	return NewStore(baseDir, nil).SetCourseDirectoryName(courseID, name)
}

// UpdateTermName sets one term's name in baseDir.
func UpdateTermName(baseDir string, termID int64, name string) error {
	return NewStore(baseDir, nil).SetTermName(termID, name)
}

func formatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
