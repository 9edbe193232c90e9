//go:build tools
// +build tools

// Package tools pins build tooling so go.mod tracks the versions used by
// lint and test runs.
package tools

import (
	_ "github.com/golangci/golangci-lint/v2/cmd/golangci-lint"
	_ "golang.org/x/tools/cmd/goimports"
	_ "gotest.tools/gotestsum"
)
