package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adlstore/adls_sdk_go/internal/cli/output"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

func (a *app) getfaclCmd() *cobra.Command {
	var oid bool
	cmd := &cobra.Command{
		Use:   "getfacl PATH",
		Short: "Show the access control list of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repr := adls.ReprUPN
			if oid {
				repr = adls.ReprOID
			}
			st, err := a.client.GetAclStatus(a.ctx(cmd), args[0], repr)
			if err != nil {
				return err
			}
			view := aclView{
				Owner:      st.Owner,
				Group:      st.Group,
				Permission: st.Permission,
				StickyBit:  st.StickyBit,
				Entries:    make([]string, 0, len(st.Entries)),
			}
			for _, e := range st.Entries {
				view.Entries = append(view.Entries, e.String())
			}
			if a.out != output.FormatTable {
				return a.print(cmd, view, nil, "")
			}

			w := a.writer(cmd)
			_, _ = fmt.Fprintf(w, "# file: %s\n# owner: %s\n# group: %s\n", args[0], view.Owner, view.Group)
			if view.StickyBit {
				_, _ = fmt.Fprintln(w, "# flags: --t")
			}
			for _, e := range view.Entries {
				_, _ = fmt.Fprintln(w, e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&oid, "oid", false, "show principals as object ids")
	return cmd
}

func (a *app) setfaclCmd() *cobra.Command {
	var (
		modify        string
		remove        string
		set           string
		removeAll     bool
		removeDefault bool
	)
	cmd := &cobra.Command{
		Use:   "setfacl PATH",
		Short: "Change the access control list of a path",
		Long: `Change the access control list of a path. Exactly one of the
flags must be given. Specs are comma separated entries such as
"user:bob:r-x,default:group::rwx".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, path := a.ctx(cmd), args[0]
			chosen := 0
			for _, on := range []bool{modify != "", remove != "", set != "", removeAll, removeDefault} {
				if on {
					chosen++
				}
			}
			if chosen != 1 {
				return errors.New("setfacl: specify exactly one of -m, -x, --set, -b, -k")
			}

			var err error
			switch {
			case modify != "":
				err = a.client.ModifyAclEntriesSpec(ctx, path, modify)
			case remove != "":
				err = a.client.RemoveAclEntriesSpec(ctx, path, remove)
			case set != "":
				err = a.client.SetAclSpec(ctx, path, set)
			case removeAll:
				err = a.client.RemoveAcl(ctx, path)
			default:
				err = a.client.RemoveDefaultAcl(ctx, path)
			}
			if err != nil {
				return err
			}
			a.done(cmd, "Updated ACL of %s", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&modify, "modify", "m", "", "add or update entries")
	f.StringVarP(&remove, "remove", "x", "", "remove entries (permissions are ignored)")
	f.StringVar(&set, "set", "", "replace the whole ACL")
	f.BoolVarP(&removeAll, "remove-all", "b", false, "remove all extended entries")
	f.BoolVarP(&removeDefault, "remove-default", "k", false, "remove default entries")
	return cmd
}

func (a *app) chmodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chmod PERMISSION PATH",
		Short: "Set the octal permission of a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.SetPermission(a.ctx(cmd), args[1], args[0]); err != nil {
				return err
			}
			a.done(cmd, "Set permission of %s to %s", args[1], args[0])
			return nil
		},
	}
}

func (a *app) chownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chown OWNER[:GROUP] PATH",
		Short: "Set the owner and/or group of a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, group, _ := strings.Cut(args[0], ":")
			if err := a.client.SetOwner(a.ctx(cmd), args[1], owner, group); err != nil {
				return err
			}
			a.done(cmd, "Changed ownership of %s", args[1])
			return nil
		},
	}
}

func (a *app) accessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "access PATH RWX",
		Short: "Check whether the caller has the given access, e.g. r-x",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.CheckAccess(a.ctx(cmd), args[0], args[1]); err != nil {
				return err
			}
			a.done(cmd, "Access %s granted on %s", args[1], args[0])
			return nil
		},
	}
}

func (a *app) expireCmd() *cobra.Command {
	var (
		never         bool
		in            time.Duration
		afterCreation time.Duration
		at            string
	)
	cmd := &cobra.Command{
		Use:   "expire PATH",
		Short: "Set or clear the expiry time of a file",
		Example: `  adlsctl expire /tmp/scratch --in 24h
  adlsctl expire /tmp/scratch --at 2030-01-01T00:00:00Z
  adlsctl expire /tmp/scratch --never`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var (
				option adls.ExpiryOption
				value  int64
				chosen int
			)
			if never {
				option, chosen = adls.ExpiryNever, chosen+1
			}
			if flags.Changed("in") {
				option, value, chosen = adls.ExpiryRelativeToNow, in.Milliseconds(), chosen+1
			}
			if flags.Changed("after-creation") {
				option, value, chosen = adls.ExpiryRelativeToCreationDate, afterCreation.Milliseconds(), chosen+1
			}
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return errors.Wrap(err, "--at")
				}
				option, value, chosen = adls.ExpiryAbsolute, t.UnixMilli(), chosen+1
			}
			if chosen != 1 {
				return errors.New("expire: specify exactly one of --never, --in, --after-creation, --at")
			}
			if err := a.client.SetExpiry(a.ctx(cmd), args[0], option, value); err != nil {
				return err
			}
			a.done(cmd, "Set expiry of %s (%s)", args[0], option)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&never, "never", false, "remove the expiry")
	f.DurationVar(&in, "in", 0, "expire this long from now")
	f.DurationVar(&afterCreation, "after-creation", 0, "expire this long after creation")
	f.StringVar(&at, "at", "", "expire at an RFC3339 time")
	return cmd
}
