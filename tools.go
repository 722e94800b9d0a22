//go:build tools

package tools

// Tool dependencies are not tracked here with blank imports. mockery v2 is
// used as an installed binary; run mockery from the module root to
// regenerate the mocks configured in .mockery.yaml.
