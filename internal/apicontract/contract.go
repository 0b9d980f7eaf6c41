// Package apicontract reads the documented operations of an OpenAPI 2 or 3
// document and reports backward-incompatible changes between two versions.
package apicontract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Operation identifies one documented endpoint.
type Operation struct {
	Method string
	Path   string
}

func (o Operation) String() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// Contract maps each documented operation to its response codes.
type Contract map[Operation]map[string]struct{}

type document struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

type operationDoc struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

// Parse reads a YAML or JSON OpenAPI document. Path-level keys that are not
// HTTP methods are ignored.
func Parse(raw []byte) (Contract, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	c := make(Contract)
	for path, item := range doc.Paths {
		for method, node := range item {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[method]; !ok {
				continue
			}
			var op operationDoc
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					codes[code] = struct{}{}
				}
			}
			c[Operation{Method: method, Path: path}] = codes
		}
	}
	return c, nil
}

// Has reports whether method and path are documented. path may use either
// {param} or :param segments.
func (c Contract) Has(method, path string) bool {
	_, ok := c[Operation{Method: strings.ToLower(method), Path: OpenAPIPath(path)}]
	return ok
}

// OpenAPIPath rewrites router-style :param segments as {param}.
func OpenAPIPath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = "{" + strings.TrimSuffix(s[1:], "?") + "}"
		}
	}
	return strings.Join(segs, "/")
}

// Breaking lists removals in revision relative to base: whole operations and
// individual response codes. The result is sorted.
func Breaking(base, revision Contract) []string {
	var issues []string
	for op, baseCodes := range base {
		revCodes, ok := revision[op]
		if !ok {
			issues = append(issues, "removed operation: "+op.String())
			continue
		}
		for code := range baseCodes {
			if _, ok := revCodes[code]; !ok {
				issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", op, strings.ToUpper(code)))
			}
		}
	}
	sort.Strings(issues)
	return issues
}
