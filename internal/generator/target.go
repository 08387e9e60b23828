package generator

import (
	"fmt"
	"strings"

	"dashpub/internal/services"
	"dashpub/internal/textutil"
)

// Target is one dashboard to export.
type Target struct {
	// Name is the view name on splunkd.
	Name string
	// TargetName is the output folder and manifest key. Empty means Name.
	TargetName string
}

// Dir returns the effective output name.
func (t Target) Dir() string {
	if t.TargetName != "" {
		return t.TargetName
	}
	return t.Name
}

func (t Target) String() string {
	if t.TargetName == "" || t.TargetName == t.Name {
		return t.Name
	}
	return t.Name + ":" + t.TargetName
}

// ParseTarget parses "name" or "name:target".
func ParseTarget(value string) (Target, error) {
	name, target, _ := strings.Cut(strings.TrimSpace(value), ":")
	t := Target{Name: strings.TrimSpace(name), TargetName: strings.TrimSpace(target)}
	if t.Name == "" {
		return Target{}, services.Wrap(services.ErrValidation, component, "parse target",
			fmt.Sprintf("%q has an empty dashboard name", value), nil)
	}
	return t, nil
}

// ParseTargets parses every entry with ParseTarget.
func ParseTargets(values []string) ([]Target, error) {
	targets := make([]Target, 0, len(values))
	for _, value := range values {
		t, err := ParseTarget(value)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// ValidateTargets rejects empty batches, unusable folder names and
// duplicates before anything on disk is touched.
func ValidateTargets(targets []Target) error {
	if len(targets) == 0 {
		return services.Wrap(services.ErrValidation, component, "validate", "no dashboards to generate", nil)
	}
	names := make(map[string]struct{}, len(targets))
	dirs := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t.Name) == "" {
			return services.Wrap(services.ErrValidation, component, "validate", "dashboard name is empty", nil)
		}
		dir := t.Dir()
		if !textutil.IsPathSegment(dir) {
			return services.Wrap(services.ErrValidation, component, "validate",
				fmt.Sprintf("target %q is not a valid folder name", dir), nil)
		}
		if _, dup := names[t.Name]; dup {
			return services.Wrap(services.ErrValidation, component, "validate",
				fmt.Sprintf("dashboard %q requested twice", t.Name), nil)
		}
		if _, dup := dirs[dir]; dup {
			return services.Wrap(services.ErrValidation, component, "validate",
				fmt.Sprintf("target %q used twice", dir), nil)
		}
		names[t.Name] = struct{}{}
		dirs[dir] = struct{}{}
	}
	return nil
}
