package filestore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

type (
	CleanupResult struct {
		RemovedCount int `json:"removed_count"`
	}

	// Stats is the count-based statistics report. OrphanedFiles is the
	// difference between on-disk and referenced counts, which can diverge
	// from the true orphan set when the registry holds stale references to
	// files no longer on disk. CleanupOrphans computes the true set
	// difference instead; the two paths are intentionally distinct.
	Stats struct {
		TotalFiles      int     `json:"total_files"`
		ReferencedFiles int     `json:"referenced_files"`
		OrphanedFiles   int     `json:"orphaned_files"`
		TotalSizeMB     float64 `json:"total_size_mb"`
	}

	VerifyAllReport struct {
		TotalFiles   int            `json:"total_files"`
		ValidFiles   int            `json:"valid_files"`
		InvalidFiles int            `json:"invalid_files"`
		TotalSizeMB  float64        `json:"total_size_mb"`
		Results      []VerifyResult `json:"results"`
	}
)

// CleanupOrphans removes every on-disk file that no submission references.
// The scan is a non-atomic snapshot and the deletes are best effort: a
// per-file failure is logged and skipped, never aborting the batch. Running
// it again immediately removes nothing.
func (svc *Service) CleanupOrphans(ctx context.Context) (CleanupResult, error) {
	svc.logger.Info("starting orphaned files cleanup")

	onDisk, err := svc.store.List()
	if err != nil {
		return CleanupResult{}, err
	}

	refs, err := svc.registry.ReferencedFilePaths(ctx)
	if err != nil {
		return CleanupResult{}, errors.Wrap(err, "listing referenced files")
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, path := range refs {
		referenced[path] = struct{}{}
	}

	var removed int
	var freed int64
	for name, size := range onDisk {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := svc.store.Remove(name); err != nil {
			svc.logger.Error(fmt.Sprintf("removing orphaned file %s: %v", name, err))
			continue
		}
		removed++
		freed += size
		svc.logger.Info(fmt.Sprintf("removed orphaned file: %s (%d bytes)", name, size))
	}

	svc.logger.Info(fmt.Sprintf(
		"cleanup completed: removed %d orphaned files, freed %.2f MB", removed, toMB(freed),
	))
	return CleanupResult{RemovedCount: removed}, nil
}

// FileStats reports storage statistics for the admin dashboard.
func (svc *Service) FileStats(ctx context.Context) (Stats, error) {
	onDisk, err := svc.store.List()
	if err != nil {
		return Stats{}, err
	}
	var totalSize int64
	for _, size := range onDisk {
		totalSize += size
	}

	referenced, err := svc.registry.CountReferencedFiles(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting referenced files")
	}

	return Stats{
		TotalFiles:      len(onDisk),
		ReferencedFiles: referenced,
		OrphanedFiles:   len(onDisk) - referenced,
		TotalSizeMB:     roundMB(totalSize),
	}, nil
}

// Verify checks one stored file's integrity.
func (svc *Service) Verify(name string) VerifyResult {
	return svc.store.Verify(name)
}

// VerifyAll checks every stored file and aggregates the results.
func (svc *Service) VerifyAll() (VerifyAllReport, error) {
	onDisk, err := svc.store.List()
	if err != nil {
		return VerifyAllReport{}, err
	}

	names := make([]string, 0, len(onDisk))
	for name := range onDisk {
		names = append(names, name)
	}
	sort.Strings(names)

	report := VerifyAllReport{Results: make([]VerifyResult, 0, len(names))}
	var totalSize int64
	for _, name := range names {
		res := svc.store.Verify(name)
		report.TotalFiles++
		if res.IsValid {
			report.ValidFiles++
			totalSize += res.Size
		}
		report.Results = append(report.Results, res)
	}
	report.InvalidFiles = report.TotalFiles - report.ValidFiles
	report.TotalSizeMB = roundMB(totalSize)
	return report, nil
}

func toMB(size int64) float64 {
	return float64(size) / (1024 * 1024)
}

func roundMB(size int64) float64 {
	return math.Round(toMB(size)*100) / 100
}
