package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AdminPolicy lists the accounts that receive the admin role.
type AdminPolicy struct {
	Admins []AdminAccount `yaml:"admins"`
}

// AdminAccount is one admin entry in the policy file.
type AdminAccount struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LoadAdminPolicy reads the YAML policy file. A missing file yields an empty
// policy, in which case nobody is an admin.
func LoadAdminPolicy(path string) (*AdminPolicy, error) {
	policy := &AdminPolicy{}
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return policy, nil
		}
		return nil, fmt.Errorf("reading admin policy: %w", err)
	}

	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parsing admin policy: %w", err)
	}

	for i, a := range policy.Admins {
		if a.Username == "" || a.Email == "" || a.Password == "" {
			return nil, fmt.Errorf("admin policy entry %d: username, email and password are required", i)
		}
	}

	return policy, nil
}

// IsAdminEmail reports whether email belongs to a policy admin.
func (p *AdminPolicy) IsAdminEmail(email string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Admins {
		if strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}
