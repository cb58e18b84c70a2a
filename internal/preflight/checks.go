package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Requirement defines an external binary photorestore may call.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// CheckDirectoryAccess verifies that the directory exists and is readable,
// and writable when write is set.
func CheckDirectoryAccess(name, path string, write bool) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	mode := uint32(unix.R_OK | unix.X_OK)
	label := "read ok"
	if write {
		mode |= unix.W_OK
		label = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckWritableParent verifies that path is writable, or that its nearest
// existing ancestor is writable so path can be created.
func CheckWritableParent(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	dir := filepath.Clean(path)
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", dir, err)}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		dir = parent
	}
	check := CheckDirectoryAccess(name, dir, true)
	if !check.Passed {
		return check
	}
	if dir != filepath.Clean(path) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return Result{Name: name, Passed: true, Detail: check.Detail}
}

// CheckDistinctCorpora verifies the subject and reference trees do not
// overlap. A nested tree would match every subject file against itself.
func CheckDistinctCorpora(subject, reference string) Result {
	const name = "Corpora"
	subject = filepath.Clean(subject)
	reference = filepath.Clean(reference)
	if subject == reference {
		return Result{Name: name, Detail: "subject and reference are the same directory"}
	}
	if within(subject, reference) || within(reference, subject) {
		return Result{Name: name, Detail: "subject and reference directories are nested"}
	}
	return Result{Name: name, Passed: true, Detail: "distinct"}
}

func within(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		result := Result{Name: req.Name, Optional: req.Optional}
		switch {
		case cmd == "":
			result.Detail = "command not configured"
		case ctx.Err() != nil:
			result.Detail = ctx.Err().Error()
		default:
			if path, err := exec.LookPath(cmd); err != nil {
				result.Detail = fmt.Sprintf("binary %q not found", cmd)
				if desc := strings.TrimSpace(req.Description); desc != "" {
					result.Detail += " (" + strings.ToLower(desc[:1]) + desc[1:] + ")"
				}
			} else {
				result.Passed = true
				result.Detail = path
			}
		}
		results = append(results, result)
	}
	return results
}
