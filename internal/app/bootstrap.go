package app

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calyptra/units-backend/internal/middleware"
)

// BootstrapSpec pre-registers tenants, users and apps at startup. Every
// entry is applied through the regular engine operations, so rerunning the
// same file against a warm store is harmless.
type BootstrapSpec struct {
	Tenants []BootstrapTenant `yaml:"tenants"`
}

type BootstrapTenant struct {
	Name  string         `yaml:"name"`
	Users []string       `yaml:"users"`
	Apps  []BootstrapApp `yaml:"apps"`
}

type BootstrapApp struct {
	Name        string  `yaml:"name"`
	CostPerUnit float64 `yaml:"cost_per_unit"`
	Plan        string  `yaml:"plan"`
	Profit      float64 `yaml:"profit"`
}

func LoadBootstrapSpec(path string) (*BootstrapSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bootstrap file: %w", err)
	}
	var spec BootstrapSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse bootstrap file: %w", err)
	}
	return &spec, nil
}

func (a *App) applyBootstrap(ctx context.Context, spec *BootstrapSpec) error {
	for _, t := range spec.Tenants {
		tenant := t.Name
		if tenant == "" {
			tenant = middleware.DefaultTenant
		}
		for _, user := range t.Users {
			if err := a.Services.Ledger.RegisterUser(ctx, tenant, user); err != nil {
				return fmt.Errorf("bootstrap user %s/%s: %w", tenant, user, err)
			}
		}
		for _, app := range t.Apps {
			if err := a.Services.App.RegisterApp(ctx, tenant, app.Name, app.CostPerUnit, app.Plan, app.Profit); err != nil {
				return fmt.Errorf("bootstrap app %s/%s: %w", tenant, app.Name, err)
			}
		}
	}
	return nil
}
