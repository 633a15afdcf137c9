package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) cleanup() error {
	res, err := cli.fileSvc.CleanupOrphans(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Cleanup completed. Removed %d orphaned files.\n", res.RemovedCount)
	return nil
}

func (cli *commandLine) stats() error {
	stats, err := cli.fileSvc.FileStats(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Total files:      %d\n", stats.TotalFiles)
	fmt.Printf("Referenced files: %d\n", stats.ReferencedFiles)
	fmt.Printf("Orphaned files:   %d\n", stats.OrphanedFiles)
	fmt.Printf("Total size:       %.2f MB\n", stats.TotalSizeMB)
	return nil
}

func (cli *commandLine) verify(filename string) error {
	if filename != "" {
		res := cli.fileSvc.Verify(filename)
		fmt.Printf("%s: %s\n", res.Filename, res.Message)
		return nil
	}

	report, err := cli.fileSvc.VerifyAll()
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		fmt.Printf("%s: %s\n", res.Filename, res.Message)
	}
	fmt.Printf("%d files, %d valid, %d invalid, %.2f MB\n",
		report.TotalFiles, report.ValidFiles, report.InvalidFiles, report.TotalSizeMB)
	return nil
}
