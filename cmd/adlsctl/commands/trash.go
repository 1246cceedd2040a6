package commands

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adlstore/adls_sdk_go/internal/cli/output"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

func (a *app) trashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and restore deleted items",
	}
	cmd.AddCommand(a.trashListCmd(), a.trashRestoreCmd())
	return cmd
}

func (a *app) trashListCmd() *cobra.Command {
	var (
		after string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "ls HINT",
		Short: "List deleted items whose path matches HINT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("trash ls: hint must not be blank")
			}
			ts, err := a.client.EnumerateDeletedItems(a.ctx(cmd), args[0], after, limit)
			if err != nil {
				return err
			}
			page := newTrashPage(ts)
			if err := a.print(cmd, page, page, "No deleted items found."); err != nil {
				return err
			}
			if a.out == output.FormatTable && page.NextListAfter != "" {
				_, _ = fmt.Fprintf(a.writer(cmd), "\nMore results: --after %s\n", page.NextListAfter)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "continue after this token")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (at most 4000)")
	return cmd
}

func (a *app) trashRestoreCmd() *cobra.Command {
	var (
		dest      string
		typ       string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "restore TOKEN",
		Short: "Restore a deleted item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := adls.RestoreOptions{Token: args[0], Destination: dest, Type: typ}
			if overwrite {
				opts.Action = "overwrite"
			}
			if err := a.client.RestoreDeletedItems(a.ctx(cmd), opts); err != nil {
				return err
			}
			a.done(cmd, "Restored %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "restore to this path instead of the original")
	cmd.Flags().StringVar(&typ, "type", "", "expected item type: file or folder")
	cmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite an existing destination")
	return cmd
}
