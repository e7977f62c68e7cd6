package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupService periodically copies the index database and all day files into
// a timestamped directory and prunes backups past the retention window.
type BackupService struct {
	dbPath        string
	daysDir       string
	storagePath   string
	interval      time.Duration
	retentionDays int
	logger        zerolog.Logger
}

func NewBackupService(dbPath, daysDir, storagePath string, interval time.Duration, retentionDays int, logger zerolog.Logger) *BackupService {
	return &BackupService{
		dbPath:        dbPath,
		daysDir:       daysDir,
		storagePath:   storagePath,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("backup service started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run first backup immediately
	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup snapshots the index database and every day file.
func (s *BackupService) PerformBackup() error {
	timestamp := time.Now().Format("20060102_150405")
	backupDir := filepath.Join(s.storagePath, "backup_"+timestamp)
	if err := os.MkdirAll(filepath.Join(backupDir, "days"), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	s.logger.Info().Str("path", backupDir).Msg("performing backup")

	if err := copyFile(s.dbPath, filepath.Join(backupDir, filepath.Base(s.dbPath))); err != nil {
		return fmt.Errorf("backup index db: %w", err)
	}

	entries, err := os.ReadDir(s.daysDir)
	if err != nil {
		return fmt.Errorf("read days dir: %w", err)
	}
	copied := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		src := filepath.Join(s.daysDir, entry.Name())
		dst := filepath.Join(backupDir, "days", entry.Name())
		if err := copyFile(src, dst); err != nil {
			s.logger.Error().Err(err).Str("file", entry.Name()).Msg("day file backup failed")
			continue
		}
		copied++
	}

	s.logger.Info().Int("day_files", copied).Msg("backup completed")
	return nil
}

// CleanupOldBackups deletes backup directories older than the retention
// window.
func (s *BackupService) CleanupOldBackups() {
	if s.retentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.storagePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("dir", entry.Name()).Msg("deleting old backup")
			_ = os.RemoveAll(filepath.Join(s.storagePath, entry.Name()))
		}
	}
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}
