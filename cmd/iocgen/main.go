package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"github.com/beynacjs/ioc/slices"
)

const provideAnnotationTag = "@provide"

type (
	ProviderDefinition struct {
		Description string

		FnName     string
		ImportPath string

		Lifecycle string
		Tags      []string
	}

	RegistryDefinition struct {
		PackageName string
		StructName  string
	}
)

func (p ProviderDefinition) String() string {
	return fmt.Sprintf(
		`✨ Provider: %s
Description: %s
Import Path: %s
Lifecycle: %s
Tags: [%s]`,
		p.FnName,
		p.Description,
		p.ImportPath,
		p.Lifecycle,
		strings.Join(p.Tags, ", "),
	)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "."
}

func main() {
	dryRun := os.Getenv("DRY_RUN") == "true"

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger()

	startScan := time.Now()

	// capture the target file/package, where the generator is invoked
	targetFile := os.Getenv("GOFILE")
	targetPackage := os.Getenv("GOPACKAGE")
	currentDir, _ := os.Getwd()
	targetFilePath := filepath.Join(currentDir, targetFile)

	// switch to the root of the module as we want to scan the whole module
	moduleRoot := findModuleRoot()
	if err := os.Chdir(moduleRoot); err != nil {
		log.Fatalf("Failed to change directory to module root: %v\n", err)
	}

	// analyze all the packages in the module, looking for:
	// - constructors annotated with @provide
	// - a struct that embeds ioc.EmptyRegistry in the target file
	var providerDefinitions []ProviderDefinition
	var registryDefinition *RegistryDefinition

	cfg := &packages.Config{
		Mode: packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, _ := packages.Load(cfg, "./...")

	for _, pkg := range pkgs {
		logger := logger.With().Str("package", pkg.ID).Logger()
		logger.Debug().Msg("Scanning package")
		for _, file := range pkg.Syntax {
			filePath := pkg.Fset.Position(file.Pos()).Filename
			packageName := file.Name.Name
			importPath := pkg.ID

			// only look for the Registry struct in the file triggering the
			// generation
			if filePath == targetFilePath {
				ast.Inspect(file, func(n ast.Node) bool {
					genDecl, ok := n.(*ast.GenDecl)
					if !ok || genDecl.Tok != token.TYPE {
						return true
					}
					for _, spec := range genDecl.Specs {
						typeSpec, ok := spec.(*ast.TypeSpec)
						if !ok {
							continue
						}
						structType, ok := typeSpec.Type.(*ast.StructType)
						if !ok {
							continue
						}
						for _, field := range structType.Fields.List {
							if len(field.Names) != 0 { // not an embedded field
								continue
							}
							sel, ok := field.Type.(*ast.SelectorExpr)
							if !ok {
								continue
							}
							if ident, ok := sel.X.(*ast.Ident); ok &&
								ident.Name == "ioc" && sel.Sel.Name == "EmptyRegistry" {
								logger.Debug().Str("struct", typeSpec.Name.Name).Msg("=> Found Registry")
								registryDefinition = &RegistryDefinition{
									PackageName: packageName,
									StructName:  typeSpec.Name.Name,
								}
							}
						}
					}
					return true
				})
			}

			// look for @provide constructors
			ast.Inspect(file, func(n ast.Node) bool {
				fn, ok := n.(*ast.FuncDecl)
				if !ok {
					return true
				}
				if fn.Recv != nil || fn.Doc == nil || !strings.Contains(fn.Doc.Text(), provideAnnotationTag) {
					return true
				}
				logger := logger.With().Str("provider", fn.Name.Name).Logger()

				logger.Debug().Msg("=> Found provider")
				annotation := parseProvideAnnotation(&logger, fn.Doc.Text())
				if unknown := annotation.UnknownProperties(); len(unknown) > 0 {
					logger.Warn().Strs("properties", unknown).Msg("Ignoring unknown annotation properties")
				}

				providerDefinitions = append(providerDefinitions, ProviderDefinition{
					FnName:      fn.Name.Name,
					Description: annotation.description,
					ImportPath:  importPath,
					Lifecycle:   annotation.Lifecycle(),
					Tags:        annotation.Tags(),
				})
				return true
			})
		}
	}

	stopScan := time.Now()

	if registryDefinition == nil {
		logger.Error().Msgf("No Registry struct found in the target package: %s, make sure you have a struct like this:\ntype Registry struct {\n    ioc.EmptyRegistry\n}", targetPackage)
		os.Exit(1)
	}

	logger.Info().Msgf("👨‍🔧 Registry found: %+v", registryDefinition)
	logger.Info().Msgf("🎯 %d providers found in the module", len(providerDefinitions))
	definitionsLogs := slices.Map(providerDefinitions, ProviderDefinition.String)
	logger.Debug().Msgf("Providers:\n%s", strings.Join(definitionsLogs, "\n----\n"))
	logger.Info().Msgf("🕵️‍♂️ Scanning completed in %s", stopScan.Sub(startScan))

	// generate the code
	outputPath := filepath.Join(
		filepath.Dir(targetFilePath),
		strings.TrimSuffix(filepath.Base(targetFilePath), ".go")+"_gen.go",
	)
	if dryRun {
		outputPath = filepath.Join("/tmp", filepath.Base(outputPath))
	}

	if err := generateCode(outputPath, registryDefinition, providerDefinitions); err != nil {
		logger.Error().Err(err).Msgf("Failed to generate code in %s", outputPath)
		os.Exit(1)
	}
	logger.Info().Msgf("✅ Code generated successfully in %s", outputPath)
}
