// Package main provides a CLI to check OpenAPI compatibility with deployed clients.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"devhub/docs"
	"devhub/internal/apicontract"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision document path (defaults to the compiled-in docs)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := load(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	var revision apicontract.Contract
	if strings.TrimSpace(*revisionPath) == "" {
		revision, err = apicontract.Parse([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = load(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := apicontract.Breaking(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func load(path string) (apicontract.Contract, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return apicontract.Parse(raw)
}
