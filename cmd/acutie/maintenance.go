package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrygo/acutie/plugin/ai/session"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", p.Driver, v)
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete sessions idle longer than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			if retentionDays <= 0 {
				retentionDays = p.RetentionDays
			}
			s, err := openStore(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer s.Close()
			hot, err := newCache(p)
			if err != nil {
				return err
			}
			defer hot.close()

			job := session.NewCleanupJob(s, session.CleanupConfig{RetentionDays: retentionDays, Cache: hot.CacheService})
			n, err := job.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions idle for more than %d days\n", n, retentionDays)
			return nil
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override ACUTIE_RETENTION_DAYS")
	return cmd
}
