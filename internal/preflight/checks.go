package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"dashpub/internal/services"
)

const checkTimeout = 10 * time.Second

// CheckSplunkd verifies that splunkd is reachable and accepts the credentials.
func CheckSplunkd(ctx context.Context, client Splunkd) Result {
	const name = "splunkd"
	if client == nil {
		return Result{Name: name, Detail: "client not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	info, err := client.ServerInfo(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version %s)", info.ServerName, info.Version)}
}

// CheckDashboard loads one dashboard without writing anything.
func CheckDashboard(ctx context.Context, client Splunkd, dashboard, app string) Result {
	name := "Dashboard " + dashboard
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	view, err := client.LoadDashboard(checkCtx, dashboard, app)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s/%s loaded", view.App, view.Name)}
}

// CheckProjectDir verifies that the project folder is writable, or that the
// nearest existing parent is when the folder does not exist yet.
func CheckProjectDir(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := nearestExisting(filepath.Dir(path))
		if parent == "" {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func nearestExisting(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// summarizeError produces a human-readable reason for a failed remote check.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (splunkd unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (splunkd unreachable)"
	}
	switch {
	case errors.Is(err, services.ErrAuth):
		return "authentication failed (check token or username/password)"
	case errors.Is(err, services.ErrNotFound):
		return "not found"
	case errors.Is(err, services.ErrValidation):
		return "not a Dashboard Studio dashboard"
	}
	return err.Error()
}
