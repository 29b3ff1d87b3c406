// Package seed replaces the vault's directory with the content of a YAML
// fixture. It backs the seed command used for demos and local development.
package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/divvault/internal/server/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is a whole directory. Entries reference each other by name.
type Fixture struct {
	OUs       []string          `yaml:"ous"`
	Repos     []RepoFixture     `yaml:"repos"`
	Divisions []DivisionFixture `yaml:"divisions"`
	Users     []UserFixture     `yaml:"users"`
}

type RepoFixture struct {
	Name        string              `yaml:"name"`
	Credentials []CredentialFixture `yaml:"credentials"`
}

type CredentialFixture struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type DivisionFixture struct {
	Name string `yaml:"name"`
	OU   string `yaml:"ou"`
	Repo string `yaml:"repo,omitempty"`
}

type UserFixture struct {
	Username  string      `yaml:"username"`
	Password  string      `yaml:"password"`
	Role      models.Role `yaml:"role"`
	OUs       []string    `yaml:"ous"`
	Divisions []string    `yaml:"divisions"`
}

// Default returns the embedded demo fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Parse decodes and validates a fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that names are unique, references resolve and every
// repo is used by at most one division.
func (f *Fixture) Validate() error {
	var errs []error

	ous := map[string]bool{}
	for _, name := range f.OUs {
		if name == "" {
			errs = append(errs, errors.New("ou with empty name"))
		} else if ous[name] {
			errs = append(errs, fmt.Errorf("duplicate ou %q", name))
		}
		ous[name] = true
	}

	repos := map[string]bool{}
	for _, r := range f.Repos {
		if repos[r.Name] {
			errs = append(errs, fmt.Errorf("duplicate repo %q", r.Name))
		}
		repos[r.Name] = true
		for _, c := range r.Credentials {
			if c.Key == "" || c.Value == "" {
				errs = append(errs, fmt.Errorf("repo %q: credential key and value required", r.Name))
			}
		}
	}

	divisions := map[string]bool{}
	usedRepos := map[string]string{}
	for _, d := range f.Divisions {
		if divisions[d.Name] {
			errs = append(errs, fmt.Errorf("duplicate division %q", d.Name))
		}
		divisions[d.Name] = true
		if !ous[d.OU] {
			errs = append(errs, fmt.Errorf("division %q: unknown ou %q", d.Name, d.OU))
		}
		if d.Repo == "" {
			continue
		}
		if !repos[d.Repo] {
			errs = append(errs, fmt.Errorf("division %q: unknown repo %q", d.Name, d.Repo))
		} else if other, ok := usedRepos[d.Repo]; ok {
			errs = append(errs, fmt.Errorf("repo %q used by divisions %q and %q", d.Repo, other, d.Name))
		}
		usedRepos[d.Repo] = d.Name
	}

	usernames := map[string]bool{}
	for _, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			errs = append(errs, errors.New("user with empty username or password"))
		}
		if usernames[u.Username] {
			errs = append(errs, fmt.Errorf("duplicate user %q", u.Username))
		}
		usernames[u.Username] = true
		if !u.Role.Valid() {
			errs = append(errs, fmt.Errorf("user %q: invalid role %q", u.Username, u.Role))
		}
		for _, ou := range u.OUs {
			if !ous[ou] {
				errs = append(errs, fmt.Errorf("user %q: unknown ou %q", u.Username, ou))
			}
		}
		for _, d := range u.Divisions {
			if !divisions[d] {
				errs = append(errs, fmt.Errorf("user %q: unknown division %q", u.Username, d))
			}
		}
	}

	return errors.Join(errs...)
}
