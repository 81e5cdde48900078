package harness

import (
	"fmt"

	"github.com/vk/fixturegrid/internal/composer"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// Test is one named test. Name may contain slashes to group tests.
type Test struct {
	Name string
	// Uses lists the fixtures the test needs. They are resolved, in order,
	// before Fn is called.
	Uses []string
	Fn   func(t *T)
}

func (t Test) ID() TestID {
	return ParseTestID(t.Name)
}

// Suite is an ordered list of tests. Results keep suite order.
type Suite []Test

// Merge concatenates suites.
func Merge(suites ...Suite) Suite {
	var all Suite
	for _, s := range suites {
		all = append(all, s...)
	}
	return all
}

// Validate checks a suite against a registry before anything runs: test
// names must be unique and non-empty, every test needs a function, and every
// fixture a test uses must be registered.
func Validate(suite Suite, reg *registry.Registry) error {
	if reg == nil {
		return composer.ErrRegistryNotValidated
	}
	seen := make(map[string]struct{}, len(suite))
	for _, test := range suite {
		if test.Name == "" {
			return fmt.Errorf("test with empty name")
		}
		if _, dup := seen[test.Name]; dup {
			return fmt.Errorf("test %q defined more than once", test.Name)
		}
		seen[test.Name] = struct{}{}
		if test.Fn == nil {
			return fmt.Errorf("test %q has no function", test.Name)
		}
		for _, name := range test.Uses {
			if _, ok := reg.Lookup(name); !ok {
				return &fixture.UnknownFixtureError{Name: name, Referrer: test.Name}
			}
		}
	}
	return nil
}
