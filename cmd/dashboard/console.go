package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/shell"
	"github.com/yenikoza/tablet-dashboard/view"
)

const helpText = `commands:
  status                     show session and section state
  sections                   list sections
  go <section>               switch section
  refresh                    reload the active section
  retry                      retry the last failed load or action
  scope <daily|monthly|yearly>
  export [pdf|excel]         save the active section's export
  login <username> <password>
  logout
  quit`

type scoped interface {
	SetScope(ctx context.Context, s view.Scope) error
}

// console is the operator's line-oriented front end to the shell.
type console struct {
	sh     *shell.Shell
	in     io.Reader
	out    io.Writer
	folder string
}

func newConsole(sh *shell.Shell, in io.Reader, out io.Writer, folder string) *console {
	return &console{sh: sh, in: in, out: out, folder: folder}
}

// Run reads commands until quit or end of input.
func (c *console) Run(ctx context.Context) {
	fmt.Fprintln(c.out, helpText)
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return
		}
		if quit := c.exec(ctx, scanner.Text()); quit {
			return
		}
	}
}

func (c *console) exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(c.out, helpText)
	case "status":
		c.printStatus()
	case "sections":
		for _, s := range shell.Sections {
			fmt.Fprintf(c.out, "  %-20s %s\n", s, s.Label())
		}
	case "go":
		if len(args) != 1 {
			err = fmt.Errorf("usage: go <section>")
			break
		}
		err = c.sh.Navigate(ctx, args[0])
	case "refresh":
		err = c.withActive(func(ctrl view.Controller) error { return ctrl.Refresh(ctx) })
	case "retry":
		err = c.withActive(func(ctrl view.Controller) error { return ctrl.Retry(ctx) })
	case "scope":
		err = c.setScope(ctx, args)
	case "export":
		err = c.export(ctx, args)
	case "login":
		if len(args) != 2 {
			err = fmt.Errorf("usage: login <username> <password>")
			break
		}
		err = c.login(ctx, args[0], args[1])
	case "logout":
		c.sh.Logout(ctx)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

func (c *console) login(ctx context.Context, username, password string) error {
	u, err := c.sh.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Hoş geldiniz, %s\n", u.DisplayName())
	return nil
}

func (c *console) withActive(fn func(view.Controller) error) error {
	ctrl := c.sh.Active()
	if ctrl == nil {
		return fmt.Errorf("no active section")
	}
	return fn(ctrl)
}

func (c *console) setScope(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: scope <daily|monthly|yearly>")
	}
	scope, err := view.ParseScope(args[0])
	if err != nil {
		return err
	}
	return c.withActive(func(ctrl view.Controller) error {
		s, ok := ctrl.(scoped)
		if !ok {
			return fmt.Errorf("%s has no scope", ctrl.Name())
		}
		return s.SetScope(ctx, scope)
	})
}

func (c *console) export(ctx context.Context, args []string) error {
	return c.withActive(func(ctrl view.Controller) error {
		var (
			name  string
			write func(w io.Writer) error
		)
		switch v := ctrl.(type) {
		case *view.ErrorLogs:
			name = v.ExportFilename()
			write = func(w io.Writer) error { _, err := v.Export(ctx, w); return err }
		case *view.Analytics:
			name = v.ExportFilename()
			write = func(w io.Writer) error { _, err := v.Export(ctx, w); return err }
		case *view.Reports:
			format := api.FormatPDF
			if len(args) > 0 {
				format = args[0]
			}
			write = func(w io.Writer) error {
				var err error
				name, err = v.Export(ctx, format, w)
				return err
			}
		default:
			return fmt.Errorf("%s has no export", ctrl.Name())
		}

		tmp, err := os.CreateTemp(c.folder, "export-*")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())
		if err := write(tmp); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		dst := filepath.Join(c.folder, name)
		if err := os.Rename(tmp.Name(), dst); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "saved %s\n", dst)
		return nil
	})
}

func (c *console) printStatus() {
	fmt.Fprintf(c.out, "state:   %s\n", c.sh.State())
	if u := c.sh.User(); u != nil {
		fmt.Fprintf(c.out, "user:    %s (%s)\n", u.DisplayName(), u.Role)
	}
	fmt.Fprintf(c.out, "section: %s\n", c.sh.ActiveSection().Label())

	ctrl := c.sh.Active()
	if ctrl == nil {
		return
	}
	st := ctrl.Status()
	fmt.Fprintf(c.out, "loading: %t  refreshing: %t  auto: %t\n", st.Loading, st.Refreshing, st.IsAutoRefreshing)
	if !st.LastUpdateTime.IsZero() {
		fmt.Fprintf(c.out, "updated: %s\n", st.LastUpdateTime.Format("15:04:05"))
	}
	if st.Err != nil {
		fmt.Fprintf(c.out, "error:   %s\n", st.Err.Message)
	}
}
