package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photorestore/internal/config"
	"photorestore/internal/reconcile"
)

func newPairsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pairs [folder]",
		Short: "List Live Photo pairs in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := cfg.Paths.SubjectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if strings.TrimSpace(dir) == "" {
				return errors.New("folder is required (pass it as an argument or set paths.subject_dir)")
			}
			if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			pairs, err := reconcile.New(cfg, reconcile.Options{Logger: logger}).Pairs(cmd.Context(), dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "No Live Photo pairs found")
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for _, p := range pairs {
				video := "-"
				if p.Video != nil {
					video = p.Video.Name()
				}
				rows = append(rows, []string{relTo(dir, filepath.Dir(p.Image.Path())), p.Image.Name(), video})
			}
			fmt.Fprintln(out, renderTable(fmt.Sprintf("%d Live Photo pairs", len(pairs)),
				[]string{"Folder", "Image", "Video"}, rows, nil))
			return nil
		},
	}
}

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
