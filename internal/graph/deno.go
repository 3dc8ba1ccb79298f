package graph

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// graph resolution relies on `deno info --json` v1 output, shipped since 1.40
var minDenoVersion = semver.MustParse("1.40.0")

// lookupDeno locates a usable deno executable: PATH first, then the common
// install locations.
func lookupDeno() (string, error) {
	denoPath, err := exec.LookPath("deno")
	if err == nil && validateDenoPath(denoPath) == nil {
		return denoPath, nil
	}

	commonPaths := []string{
		"/usr/local/bin/deno",
		"/usr/bin/deno",
		"/opt/homebrew/bin/deno",
	}
	if home, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(home, ".deno/bin/deno"))
	}
	if runtime.GOOS == "windows" {
		for i, p := range commonPaths {
			commonPaths[i] = p + ".exe"
		}
	}
	for _, p := range commonPaths {
		fi, err := os.Lstat(p)
		if err == nil && !fi.IsDir() && validateDenoPath(p) == nil {
			return p, nil
		}
	}

	return "", errors.New("deno is required to resolve external imports, install it from https://deno.land")
}

func validateDenoPath(denoPath string) error {
	cmd := exec.Command(denoPath, "eval", "console.log(Deno.version.deno)")
	output, err := cmd.Output()
	if err != nil {
		return err
	}
	version, err := semver.NewVersion(strings.TrimSpace(string(output)))
	if err != nil {
		return fmt.Errorf("fail to parse deno version: %w", err)
	}
	if version.LessThan(minDenoVersion) {
		return fmt.Errorf("deno %s is too old, %s or later is required", version, minDenoVersion)
	}
	return nil
}
