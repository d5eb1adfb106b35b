package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"aromasens/config"
	"aromasens/logger"
	"aromasens/models"
)

func TestRegisterProvidersReplacesKeylessDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Tertiary = config.ProviderConfig{}

	providers := registerProviders(cfg, logger.NewNop())

	if got := providers[models.ProviderPrimary].Name(); got != string(models.KindDummy) {
		t.Fatalf("primary=%q, want dummy for a keyless default", got)
	}
	if got := providers[models.ProviderSecondary].Name(); got != string(models.KindAnthropic) {
		t.Fatalf("secondary=%q", got)
	}
	if _, ok := providers[models.ProviderTertiary]; ok {
		t.Fatalf("empty slot registered")
	}
}

func TestRegisterProvidersKeepsUsableDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Primary.APIKey = "sk-test"
	cfg.Providers.Tertiary = config.ProviderConfig{}

	providers := registerProviders(cfg, logger.NewNop())

	if got := providers[models.ProviderPrimary].Name(); got == string(models.KindDummy) {
		t.Fatalf("keyed default replaced by dummy")
	}
}

func TestRegisterProvidersFillsUnconfiguredDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Tertiary = config.ProviderConfig{}
	cfg.Defaults.Provider = models.ProviderTertiary

	providers := registerProviders(cfg, logger.NewNop())

	if p, ok := providers[models.ProviderTertiary]; !ok || p.Name() != string(models.KindDummy) {
		t.Fatalf("tertiary=%v", providers[models.ProviderTertiary])
	}
}

func TestExportedConstructorsAndTypesAreDocumented(t *testing.T) {
	for _, dir := range []string{"config", "controllers", "logger", "models", "observability", "services", "storage", "utils"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			t.Fatalf("glob %s: %v", dir, err)
		}
		fset := token.NewFileSet()
		for _, path := range files {
			if strings.HasSuffix(path, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			for _, decl := range f.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if d.Recv == nil && strings.HasPrefix(d.Name.Name, "New") && d.Doc == nil {
						t.Errorf("%s: %s has no doc comment", fset.Position(d.Pos()), d.Name.Name)
					}
				case *ast.GenDecl:
					if d.Tok != token.TYPE {
						continue
					}
					for _, s := range d.Specs {
						ts := s.(*ast.TypeSpec)
						if ts.Name.IsExported() && d.Doc == nil && ts.Doc == nil {
							t.Errorf("%s: type %s has no doc comment", fset.Position(ts.Pos()), ts.Name.Name)
						}
					}
				}
			}
		}
	}
}
